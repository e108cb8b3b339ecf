package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultSiteName       = "TPQ Al-Qur'an"
	DefaultWeekdayHours   = "Senin - Jumat: 14.00 - 17.00"
	DefaultWeekendHours   = "Sabtu - Minggu: 08.00 - 11.00"
	DefaultPrimaryColor   = "#059669"
	DefaultSecondaryColor = "#10b981"
	DefaultHeroSubtitle   = "Membentuk generasi Qur'ani yang berakhlak mulia"

	defaultSiteDescriptionFormat  = "Taman Pendidikan Al-Qur'an %s"
	defaultHeroTitleFormat        = "Selamat Datang di %s"
	defaultAboutTitleFormat       = "Tentang %s"
	defaultAboutDescriptionFormat = "%s berkomitmen memberikan pendidikan Al-Qur'an terbaik bagi putra-putri Anda."
	defaultWhatsappMessageFormat  = "Assalamu'alaikum, saya ingin bertanya tentang pendaftaran santri di %s."

	// MaxLogoLength is the longest logo_url (in characters) accepted on write.
	MaxLogoLength = utils.MaxLogoChars
)

type TenantSetting struct {
	ID               int       `gorm:"primary_key" json:"id"`
	AdminId          string    `gorm:"size:36;not null;uniqueIndex" json:"admin_id"`
	SiteName         string    `gorm:"size:255" json:"site_name"`
	SiteDescription  string    `gorm:"type:text" json:"site_description"`
	LogoUrl          string    `gorm:"type:text" json:"logo_url"`
	Address          string    `gorm:"type:text" json:"address"`
	Phone            string    `gorm:"size:50" json:"phone"`
	Email            string    `gorm:"size:100" json:"email"`
	Whatsapp         string    `gorm:"size:50" json:"whatsapp"`
	WhatsappMessage  string    `gorm:"type:text" json:"whatsapp_message"`
	HeroTitle        string    `gorm:"size:255" json:"hero_title"`
	HeroSubtitle     string    `gorm:"type:text" json:"hero_subtitle"`
	AboutTitle       string    `gorm:"size:255" json:"about_title"`
	AboutDescription string    `gorm:"type:text" json:"about_description"`
	FacebookUrl      string    `gorm:"size:255" json:"facebook_url"`
	InstagramUrl     string    `gorm:"size:255" json:"instagram_url"`
	YoutubeUrl       string    `gorm:"size:255" json:"youtube_url"`
	WeekdayHours     string    `gorm:"size:100;default:'Senin - Jumat: 14.00 - 17.00'" json:"weekday_hours"`
	WeekendHours     string    `gorm:"size:100;default:'Sabtu - Minggu: 08.00 - 11.00'" json:"weekend_hours"`
	PrimaryColor     string    `gorm:"size:20;default:'#059669'" json:"primary_color"`
	SecondaryColor   string    `gorm:"size:20;default:'#10b981'" json:"secondary_color"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Optional marks whether a JSON key was present. A present null decodes to
// Set with the zero value.
type Optional[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// SettingsPatch is a sparse update. Unknown JSON keys are dropped by the decoder,
// so only the fields below can ever reach the UPDATE.
type SettingsPatch struct {
	SiteName         Optional[string] `json:"site_name"`
	SiteDescription  Optional[string] `json:"site_description"`
	Logo             Optional[string] `json:"logo"`
	LogoUrl          Optional[string] `json:"logo_url"`
	Address          Optional[string] `json:"address"`
	Phone            Optional[string] `json:"phone"`
	Email            Optional[string] `json:"email"`
	Whatsapp         Optional[string] `json:"whatsapp"`
	WhatsappMessage  Optional[string] `json:"whatsapp_message"`
	HeroTitle        Optional[string] `json:"hero_title"`
	HeroSubtitle     Optional[string] `json:"hero_subtitle"`
	AboutTitle       Optional[string] `json:"about_title"`
	AboutDescription Optional[string] `json:"about_description"`
	FacebookUrl      Optional[string] `json:"facebook_url"`
	InstagramUrl     Optional[string] `json:"instagram_url"`
	YoutubeUrl       Optional[string] `json:"youtube_url"`
	WeekdayHours     Optional[string] `json:"weekday_hours"`
	WeekendHours     Optional[string] `json:"weekend_hours"`
	PrimaryColor     Optional[string] `json:"primary_color"`
	SecondaryColor   Optional[string] `json:"secondary_color"`
}

// NewSettings is the full-replace payload; nil fields take their fallback.
type NewSettings struct {
	SiteName         *string `json:"site_name"`
	SiteDescription  *string `json:"site_description"`
	LogoUrl          *string `json:"logo_url"`
	Address          *string `json:"address"`
	Phone            *string `json:"phone"`
	Email            *string `json:"email"`
	Whatsapp         *string `json:"whatsapp"`
	WhatsappMessage  *string `json:"whatsapp_message"`
	HeroTitle        *string `json:"hero_title"`
	HeroSubtitle     *string `json:"hero_subtitle"`
	AboutTitle       *string `json:"about_title"`
	AboutDescription *string `json:"about_description"`
	FacebookUrl      *string `json:"facebook_url"`
	InstagramUrl     *string `json:"instagram_url"`
	YoutubeUrl       *string `json:"youtube_url"`
	WeekdayHours     *string `json:"weekday_hours"`
	WeekendHours     *string `json:"weekend_hours"`
	PrimaryColor     *string `json:"primary_color"`
	SecondaryColor   *string `json:"secondary_color"`
}

type settingsColumn struct {
	name  string
	value Optional[string]
}

func (p *SettingsPatch) logo() Optional[string] {
	if p.Logo.Set {
		return p.Logo
	}
	return p.LogoUrl
}

// columns lists the whitelisted columns in table order.
func (p *SettingsPatch) columns() []settingsColumn {
	return []settingsColumn{
		{"site_name", p.SiteName},
		{"site_description", p.SiteDescription},
		{"logo_url", p.logo()},
		{"address", p.Address},
		{"phone", p.Phone},
		{"email", p.Email},
		{"whatsapp", p.Whatsapp},
		{"whatsapp_message", p.WhatsappMessage},
		{"hero_title", p.HeroTitle},
		{"hero_subtitle", p.HeroSubtitle},
		{"about_title", p.AboutTitle},
		{"about_description", p.AboutDescription},
		{"facebook_url", p.FacebookUrl},
		{"instagram_url", p.InstagramUrl},
		{"youtube_url", p.YoutubeUrl},
		{"weekday_hours", p.WeekdayHours},
		{"weekend_hours", p.WeekendHours},
		{"primary_color", p.PrimaryColor},
		{"secondary_color", p.SecondaryColor},
	}
}

// IsEmpty reports whether no whitelisted field is present.
func (p *SettingsPatch) IsEmpty() bool {
	for _, c := range p.columns() {
		if c.value.Set {
			return false
		}
	}
	return true
}

// updates builds the column map of one MergeSettings UPDATE, including the
// titles derived from site_name.
func (p *SettingsPatch) updates() map[string]interface{} {
	result := make(map[string]interface{})
	for _, c := range p.columns() {
		if c.value.Set {
			result[c.name] = c.value.Value
		}
	}
	if v, ok := result["logo_url"]; ok {
		result["logo_url"] = utils.TruncateRunes(v.(string), MaxLogoLength)
	}
	if strings.TrimSpace(p.SiteName.Value) != "" {
		if !p.HeroTitle.Set {
			result["hero_title"] = fmt.Sprintf(defaultHeroTitleFormat, p.SiteName.Value)
		}
		if !p.AboutTitle.Set {
			result["about_title"] = fmt.Sprintf(defaultAboutTitleFormat, p.SiteName.Value)
		}
	}
	return result
}

func (p *SettingsPatch) validate() error {
	if p.Email.Set && utils.ValidateVar(p.Email.Value, "omitempty,email") != nil {
		return utils.ValidationError("invalid email")
	}
	return nil
}

func (input *NewSettings) validate() error {
	if utils.ValidateVar(utils.DereferencePtr(input.Email, ""), "omitempty,email") != nil {
		return utils.ValidationError("invalid email")
	}
	return nil
}

/*
caches:
	Settings:$adminId
*/

func settingsCacheKey(adminId string) string {
	return "Settings:" + adminId
}

func storeSettingsCache(setting *TenantSetting) {
	if err := config.SetRedisObject(settingsCacheKey(setting.AdminId), setting, config.SettingsCacheTTL()); err != nil {
		config.LogWarning(config.GetLogger(), "models", "storeSettingsCache", setting.AdminId, err)
	}
}

// findSettings returns nil, nil when the tenant has no row yet.
func findSettings(ctx context.Context, db *gorm.DB, adminId string) (*TenantSetting, error) {
	var setting TenantSetting
	err := db.WithContext(ctx).Where("admin_id = ?", adminId).Take(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.StorageError("read settings", err)
	}
	return &setting, nil
}

// resolveSiteName prefers the display name carried by the caller's token.
func resolveSiteName(ctx context.Context, admin *Admin) string {
	name, _ := utils.GetAdminNameFromContext(ctx)
	return utils.FirstNonEmpty(name, admin.Name, DefaultSiteName)
}

func defaultSettings(siteName string, admin *Admin) *TenantSetting {
	return &TenantSetting{
		AdminId:          admin.ID,
		SiteName:         siteName,
		SiteDescription:  fmt.Sprintf(defaultSiteDescriptionFormat, siteName),
		Email:            admin.Email,
		WhatsappMessage:  fmt.Sprintf(defaultWhatsappMessageFormat, siteName),
		HeroTitle:        fmt.Sprintf(defaultHeroTitleFormat, siteName),
		HeroSubtitle:     DefaultHeroSubtitle,
		AboutTitle:       fmt.Sprintf(defaultAboutTitleFormat, siteName),
		AboutDescription: fmt.Sprintf(defaultAboutDescriptionFormat, siteName),
		WeekdayHours:     DefaultWeekdayHours,
		WeekendHours:     DefaultWeekendHours,
		PrimaryColor:     DefaultPrimaryColor,
		SecondaryColor:   DefaultSecondaryColor,
	}
}

// insertSettingsIfAbsent is the atomic first write; it reports false when
// another request created the row first.
func insertSettingsIfAbsent(ctx context.Context, db *gorm.DB, setting *TenantSetting) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "admin_id"}}, DoNothing: true}).
		Create(setting)
	if result.Error != nil {
		return false, utils.StorageError("create settings", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetSettings returns the tenant's settings, creating the default row on first read.
func GetSettings(ctx context.Context, adminId string) (*TenantSetting, error) {
	if adminId == "" {
		return nil, utils.ValidationError("admin id is required")
	}

	var cached TenantSetting
	exists, err := config.GetRedisObject(settingsCacheKey(adminId), &cached)
	if err != nil {
		config.LogWarning(config.GetLogger(), "models", "GetSettings", "read cache", err)
	} else if exists {
		return &cached, nil
	}

	db := config.GetDB()
	setting, err := findSettings(ctx, db, adminId)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		admin, err := GetAdmin(ctx, adminId)
		if err != nil {
			return nil, err
		}
		if _, err := insertSettingsIfAbsent(ctx, db, defaultSettings(resolveSiteName(ctx, admin), admin)); err != nil {
			return nil, err
		}
		// re-read so both racing callers return the persisted row
		setting, err = findSettings(ctx, db, adminId)
		if err != nil {
			return nil, err
		}
		if setting == nil {
			return nil, utils.StorageError("create settings", errors.New("row missing after insert"))
		}
	}

	storeSettingsCache(setting)
	return setting, nil
}

// RefreshSettingsCache drops the cached row and reloads it from the database.
func RefreshSettingsCache(ctx context.Context, adminId string) (*TenantSetting, error) {
	if adminId == "" {
		return nil, utils.ValidationError("admin id is required")
	}
	if err := config.RemoveRedisKey(settingsCacheKey(adminId)); err != nil {
		config.LogWarning(config.GetLogger(), "models", "RefreshSettingsCache", adminId, err)
	}
	return GetSettings(ctx, adminId)
}

// ReplaceSettings overwrites every column in one UPDATE. It never creates a row.
func ReplaceSettings(ctx context.Context, adminId string, input *NewSettings) (*TenantSetting, error) {
	if adminId == "" {
		return nil, utils.ValidationError("admin id is required")
	}
	if input == nil {
		input = &NewSettings{}
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	adminEmail := ""
	if input.Email == nil {
		admin, err := GetAdmin(ctx, adminId)
		if err != nil {
			return nil, err
		}
		adminEmail = admin.Email
	}

	str := utils.DereferencePtr[string]
	siteName := str(input.SiteName, "")
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&TenantSetting{}).Where("admin_id = ?", adminId).Updates(map[string]interface{}{
		"site_name":         siteName,
		"site_description":  str(input.SiteDescription, ""),
		"logo_url":          utils.TruncateRunes(str(input.LogoUrl, ""), MaxLogoLength),
		"address":           str(input.Address, ""),
		"phone":             str(input.Phone, ""),
		"email":             str(input.Email, adminEmail),
		"whatsapp":          str(input.Whatsapp, ""),
		"whatsapp_message":  str(input.WhatsappMessage, ""),
		"hero_title":        str(input.HeroTitle, ""),
		"hero_subtitle":     str(input.HeroSubtitle, ""),
		"about_title":       str(input.AboutTitle, ""),
		"about_description": str(input.AboutDescription, ""),
		"facebook_url":      str(input.FacebookUrl, ""),
		"instagram_url":     str(input.InstagramUrl, ""),
		"youtube_url":       str(input.YoutubeUrl, ""),
		"weekday_hours":     str(input.WeekdayHours, DefaultWeekdayHours),
		"weekend_hours":     str(input.WeekendHours, DefaultWeekendHours),
		"primary_color":     str(input.PrimaryColor, DefaultPrimaryColor),
		"secondary_color":   str(input.SecondaryColor, DefaultSecondaryColor),
		"updated_at":        time.Now(),
	})
	if result.Error != nil {
		return nil, utils.StorageError("replace settings", result.Error)
	}

	setting, err := findSettings(ctx, db, adminId)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, utils.NotFoundError("settings not found")
	}

	storeSettingsCache(setting)
	if siteName != "" {
		propagateSiteName(ctx, adminId, siteName)
	}
	return setting, nil
}

// MergeSettings applies only the fields present in patch. When the tenant has
// no row yet, only the base fields are written.
func MergeSettings(ctx context.Context, adminId string, patch *SettingsPatch) (*TenantSetting, error) {
	if adminId == "" {
		return nil, utils.ValidationError("admin id is required")
	}
	if patch == nil || patch.IsEmpty() {
		return nil, utils.ValidationError("nothing to update")
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	existing, err := findSettings(ctx, db, adminId)
	if err != nil {
		return nil, err
	}

	created := false
	if existing == nil {
		admin, err := GetAdmin(ctx, adminId)
		if err != nil {
			return nil, err
		}
		created, err = insertSettingsIfAbsent(ctx, db, baseSettings(ctx, admin, patch))
		if err != nil {
			return nil, err
		}
	}

	if !created {
		updates := patch.updates()
		updates["updated_at"] = time.Now()
		if err := db.WithContext(ctx).Model(&TenantSetting{}).Where("admin_id = ?", adminId).Updates(updates).Error; err != nil {
			return nil, utils.StorageError("update settings", err)
		}
	}

	setting, err := findSettings(ctx, db, adminId)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, utils.NotFoundError("settings not found")
	}

	storeSettingsCache(setting)
	if patch.SiteName.Set && strings.TrimSpace(setting.SiteName) != "" {
		propagateSiteName(ctx, adminId, setting.SiteName)
	}
	return setting, nil
}

// baseSettings is the row a first MergeSettings creates: name, description,
// logo, whatsapp fields and contact fields. Other patch fields are ignored.
func baseSettings(ctx context.Context, admin *Admin, patch *SettingsPatch) *TenantSetting {
	value := func(o Optional[string], fallback string) string {
		if o.Set {
			return o.Value
		}
		return fallback
	}
	siteName := value(patch.SiteName, resolveSiteName(ctx, admin))
	return &TenantSetting{
		AdminId:         admin.ID,
		SiteName:        siteName,
		SiteDescription: value(patch.SiteDescription, ""),
		LogoUrl:         utils.TruncateRunes(value(patch.logo(), ""), MaxLogoLength),
		Whatsapp:        value(patch.Whatsapp, ""),
		WhatsappMessage: value(patch.WhatsappMessage, ""),
		Phone:           value(patch.Phone, ""),
		Email:           value(patch.Email, admin.Email),
		Address:         value(patch.Address, ""),
	}
}

// propagateSiteName pushes a renamed site to the admin record and to
// subscribers. The settings write already succeeded, so failures only warn.
func propagateSiteName(ctx context.Context, adminId string, siteName string) {
	logger := config.GetLogger()
	if err := renameAdmin(ctx, adminId, siteName); err != nil {
		config.LogWarning(logger, "models", "propagateSiteName", "rename admin", err)
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	err := config.PublishSettingsEvent(ctx, config.SettingsEvent{
		AdminId:       adminId,
		Action:        "settings.updated",
		SiteName:      siteName,
		UpdatedAt:     time.Now(),
		CorrelationId: correlationId,
	})
	if err != nil {
		config.LogWarning(logger, "models", "propagateSiteName", "publish event", err)
	}
}
