package utils

import (
	"reflect"
	"time"

	"github.com/mmdatafocus/tpq_backend/config"
)

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

// cache key of an instance, Type:$id
func RedisKey[T any](id string) string {
	return GetTypeName[T]() + ":" + id
}

// store instance under Type:$id; ttl 0 keeps it until evicted
func StoreRedis[T any](obj *T, id string, ttl time.Duration) error {
	return config.SetRedisObject(RedisKey[T](id), obj, ttl)
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](id string) (*T, error) {
	var result T
	exists, err := config.GetRedisObject(RedisKey[T](id), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &result, nil
}

// remove an instance, Type:$id
func RemoveRedisItem[T any](id string) error {
	return config.RemoveRedisKey(RedisKey[T](id))
}
