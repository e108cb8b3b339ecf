package models_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
)

func TestGetSettingsPersistsDefaultsOnce(t *testing.T) {
	db, mr := setupStores(t)
	admin := createTestAdmin(t, "alikhlas", "TPQ Al-Ikhlas", "admin@alikhlas.id")
	ctx := adminContext(admin)

	first, err := models.GetSettings(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetSettings #1: %v", err)
	}
	if first.SiteName != "TPQ Al-Ikhlas" {
		t.Fatalf("site_name = %q, want tenant display name", first.SiteName)
	}
	if !strings.Contains(first.HeroTitle, "TPQ Al-Ikhlas") || !strings.Contains(first.AboutTitle, "TPQ Al-Ikhlas") {
		t.Fatalf("titles not derived from site name: %q / %q", first.HeroTitle, first.AboutTitle)
	}
	if first.Email != "admin@alikhlas.id" {
		t.Fatalf("email = %q, want admin email", first.Email)
	}

	// bypass the cache so the second read has to come from the database
	mr.FlushAll()
	second, err := models.GetSettings(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetSettings #2: %v", err)
	}
	if got, want := stringFields(second), stringFields(first); !mapsEqual(got, want) {
		t.Fatalf("second read differs:\n got  %v\n want %v", got, want)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if n := countSettingsRows(t, db, admin.ID); n != 1 {
		t.Fatalf("settings rows = %d, want 1", n)
	}
}

func TestGetSettingsFallsBackToDefaultSiteName(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "noname", " ", "")
	// no display name in the context or on the account
	setting, err := models.GetSettings(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if setting.SiteName != models.DefaultSiteName {
		t.Fatalf("site_name = %q, want %q", setting.SiteName, models.DefaultSiteName)
	}
}

func TestGetSettingsUnknownAdmin(t *testing.T) {
	setupStores(t)
	_, err := models.GetSettings(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	_, err = models.GetSettings(context.Background(), "")
	if !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("empty admin id: err = %v, want ErrValidation", err)
	}
}

func TestMergeSettingsOnlyTouchesPresentFields(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "annur", "TPQ An-Nur", "admin@annur.id")
	ctx := adminContext(admin)

	before, err := models.GetSettings(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}

	var patch models.SettingsPatch
	if err := json.Unmarshal([]byte(`{"whatsapp":"X"}`), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	after, err := models.MergeSettings(ctx, admin.ID, &patch)
	if err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}
	if after.Whatsapp != "X" {
		t.Fatalf("whatsapp = %q, want X", after.Whatsapp)
	}

	want := stringFields(before)
	want["Whatsapp"] = "X"
	if got := stringFields(after); !mapsEqual(got, want) {
		t.Fatalf("unrelated fields changed:\n got  %v\n want %v", got, want)
	}
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatalf("updated_at went backwards: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestMergeSettingsRejectsEmptyPatch(t *testing.T) {
	db, _ := setupStores(t)
	admin := createTestAdmin(t, "empty", "TPQ Kosong", "")
	ctx := adminContext(admin)

	for _, body := range []string{`{}`, `{"unknown":"x","admin_id":"other"}`} {
		var patch models.SettingsPatch
		if err := json.Unmarshal([]byte(body), &patch); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		_, err := models.MergeSettings(ctx, admin.ID, &patch)
		if !errors.Is(err, utils.ErrValidation) {
			t.Fatalf("%s: err = %v, want ErrValidation", body, err)
		}
	}
	// no write happened, not even the lazy row creation
	if n := countSettingsRows(t, db, admin.ID); n != 0 {
		t.Fatalf("settings rows = %d, want 0", n)
	}

	before, err := models.GetSettings(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{}); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("existing row: err = %v, want ErrValidation", err)
	}
	var stored models.TenantSetting
	if err := db.Where("admin_id = ?", admin.ID).Take(&stored).Error; err != nil {
		t.Fatalf("read row: %v", err)
	}
	if !stored.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("updated_at changed on rejected patch: %v -> %v", before.UpdatedAt, stored.UpdatedAt)
	}
}

func TestMergeSettingsDerivesTitlesFromSiteName(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "titles", "TPQ Lama", "")
	ctx := adminContext(admin)
	if _, err := models.GetSettings(ctx, admin.ID); err != nil {
		t.Fatalf("GetSettings: %v", err)
	}

	// 1) site_name alone derives both titles
	setting, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{SiteName: models.Some("Foo")})
	if err != nil {
		t.Fatalf("MergeSettings site_name: %v", err)
	}
	if !strings.Contains(setting.HeroTitle, "Foo") || !strings.Contains(setting.AboutTitle, "Foo") {
		t.Fatalf("titles = %q / %q, want them to contain Foo", setting.HeroTitle, setting.AboutTitle)
	}

	// 2) hero_title alone is stored verbatim
	setting, err = models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{HeroTitle: models.Some("Bar")})
	if err != nil {
		t.Fatalf("MergeSettings hero_title: %v", err)
	}
	if setting.HeroTitle != "Bar" {
		t.Fatalf("hero_title = %q, want Bar", setting.HeroTitle)
	}

	// 3) explicit hero_title wins over the derived one
	setting, err = models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{
		SiteName:  models.Some("Baz"),
		HeroTitle: models.Some("Custom"),
	})
	if err != nil {
		t.Fatalf("MergeSettings both: %v", err)
	}
	if setting.HeroTitle != "Custom" || !strings.Contains(setting.AboutTitle, "Baz") {
		t.Fatalf("titles = %q / %q", setting.HeroTitle, setting.AboutTitle)
	}
}

func TestMergeSettingsTruncatesLogo(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "logo", "TPQ Logo", "")
	ctx := adminContext(admin)
	if _, err := models.GetSettings(ctx, admin.ID); err != nil {
		t.Fatalf("GetSettings: %v", err)
	}

	long := "data:image/png;base64," + strings.Repeat("A", models.MaxLogoLength)
	for _, key := range []string{"logo", "logo_url"} {
		body, _ := json.Marshal(map[string]string{key: long})
		var patch models.SettingsPatch
		if err := json.Unmarshal(body, &patch); err != nil {
			t.Fatalf("decode: %v", err)
		}
		setting, err := models.MergeSettings(ctx, admin.ID, &patch)
		if err != nil {
			t.Fatalf("MergeSettings %s: %v", key, err)
		}
		if len(setting.LogoUrl) != models.MaxLogoLength {
			t.Fatalf("%s: stored length = %d, want %d", key, len(setting.LogoUrl), models.MaxLogoLength)
		}
		if setting.LogoUrl != long[:models.MaxLogoLength] {
			t.Fatalf("%s: stored logo is not a prefix of the input", key)
		}
	}
}

func TestMergeSettingsCreatesBaseRowWhenMissing(t *testing.T) {
	db, _ := setupStores(t)
	admin := createTestAdmin(t, "fresh", "TPQ Baru", "admin@baru.id")
	ctx := adminContext(admin)

	setting, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{
		Whatsapp:  models.Some("081234567890"),
		HeroTitle: models.Some("ignored on first write"),
	})
	if err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}
	if n := countSettingsRows(t, db, admin.ID); n != 1 {
		t.Fatalf("settings rows = %d, want 1", n)
	}
	if setting.Whatsapp != "081234567890" {
		t.Fatalf("whatsapp = %q", setting.Whatsapp)
	}
	if setting.SiteName != "TPQ Baru" || setting.Email != "admin@baru.id" {
		t.Fatalf("base fallbacks not applied: site_name=%q email=%q", setting.SiteName, setting.Email)
	}
	if setting.HeroTitle != "" {
		t.Fatalf("hero_title = %q, non-base fields are not written on the first insert", setting.HeroTitle)
	}
}

func TestMergeSettingsNullClearsField(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "nulls", "TPQ Null", "")
	ctx := adminContext(admin)
	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{Address: models.Some("Jl. Masjid 1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{Phone: models.Some("021-555")}); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	var patch models.SettingsPatch
	if err := json.Unmarshal([]byte(`{"phone":null}`), &patch); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !patch.Phone.Set {
		t.Fatalf("null key should count as present")
	}
	setting, err := models.MergeSettings(ctx, admin.ID, &patch)
	if err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}
	if setting.Phone != "" || setting.Address != "Jl. Masjid 1" {
		t.Fatalf("phone=%q address=%q", setting.Phone, setting.Address)
	}
}

func TestMergeSettingsValidatesContactFields(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "invalid", "TPQ Invalid", "")
	ctx := adminContext(admin)

	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{Email: models.Some("not-an-email")}); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("email: err = %v, want ErrValidation", err)
	}

	// social links and colors are free text
	setting, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{
		InstagramUrl: models.Some("instagram.com/tpq_alquran"),
		PrimaryColor: models.Some("rgb(5,150,105)"),
	})
	if err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}
	if setting.InstagramUrl != "instagram.com/tpq_alquran" || setting.PrimaryColor != "rgb(5,150,105)" {
		t.Fatalf("instagram=%q primary=%q", setting.InstagramUrl, setting.PrimaryColor)
	}

	siteName := "TPQ Bebas"
	facebook := "fb: TPQ Bebas"
	replaced, err := models.ReplaceSettings(ctx, admin.ID, &models.NewSettings{SiteName: &siteName, FacebookUrl: &facebook})
	if err != nil {
		t.Fatalf("ReplaceSettings: %v", err)
	}
	if replaced.FacebookUrl != facebook {
		t.Fatalf("facebook_url = %q", replaced.FacebookUrl)
	}
}

func TestMergeSettingsBlankSiteNameKeepsTitles(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "blank", "TPQ Awal", "")
	ctx := adminContext(admin)
	before, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{SiteName: models.Some("TPQ Awal")})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, body := range []string{`{"site_name":null}`, `{"site_name":""}`, `{"site_name":"   "}`} {
		var patch models.SettingsPatch
		if err := json.Unmarshal([]byte(body), &patch); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		setting, err := models.MergeSettings(ctx, admin.ID, &patch)
		if err != nil {
			t.Fatalf("MergeSettings %s: %v", body, err)
		}
		if setting.HeroTitle != before.HeroTitle || setting.AboutTitle != before.AboutTitle {
			t.Fatalf("%s: titles = %q / %q, want %q / %q", body, setting.HeroTitle, setting.AboutTitle, before.HeroTitle, before.AboutTitle)
		}
	}
}

func TestReplaceSettings(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "replace", "TPQ Replace", "admin@replace.id")
	ctx := adminContext(admin)

	siteName := "TPQ Pengganti"
	if _, err := models.ReplaceSettings(ctx, admin.ID, &models.NewSettings{SiteName: &siteName}); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("no row: err = %v, want ErrNotFound", err)
	}

	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{
		Address:  models.Some("Jl. Lama"),
		Whatsapp: models.Some("0811"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	setting, err := models.ReplaceSettings(ctx, admin.ID, &models.NewSettings{SiteName: &siteName})
	if err != nil {
		t.Fatalf("ReplaceSettings: %v", err)
	}
	if setting.SiteName != siteName {
		t.Fatalf("site_name = %q", setting.SiteName)
	}
	// every other column falls back, nothing stale survives
	if setting.Address != "" || setting.Whatsapp != "" {
		t.Fatalf("stale values kept: address=%q whatsapp=%q", setting.Address, setting.Whatsapp)
	}
	if setting.Email != "admin@replace.id" {
		t.Fatalf("email = %q, want admin email fallback", setting.Email)
	}
	if setting.WeekdayHours != models.DefaultWeekdayHours || setting.WeekendHours != models.DefaultWeekendHours {
		t.Fatalf("hours = %q / %q", setting.WeekdayHours, setting.WeekendHours)
	}
	if setting.PrimaryColor != models.DefaultPrimaryColor || setting.SecondaryColor != models.DefaultSecondaryColor {
		t.Fatalf("colors = %q / %q", setting.PrimaryColor, setting.SecondaryColor)
	}
}

func TestSiteNameChangePropagatesToAdmin(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "rename", "TPQ Awal", "")
	ctx := adminContext(admin)

	// warm the admin cache so the rename must evict it
	if _, err := models.GetAdmin(ctx, admin.ID); err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{SiteName: models.Some("TPQ Akhir")}); err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}
	renamed, err := models.GetAdmin(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if renamed.Name != "TPQ Akhir" {
		t.Fatalf("admin name = %q, want TPQ Akhir", renamed.Name)
	}
}

func TestSettingsCacheRefresh(t *testing.T) {
	db, _ := setupStores(t)
	admin := createTestAdmin(t, "cache", "TPQ Cache", "")
	ctx := adminContext(admin)

	if _, err := models.GetSettings(ctx, admin.ID); err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	// out-of-band edit the cache cannot know about
	if err := db.Model(&models.TenantSetting{}).Where("admin_id = ?", admin.ID).Update("address", "Jl. Baru").Error; err != nil {
		t.Fatalf("direct update: %v", err)
	}

	cached, err := models.GetSettings(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetSettings cached: %v", err)
	}
	if cached.Address != "" {
		t.Fatalf("expected cached row, got address %q", cached.Address)
	}

	refreshed, err := models.RefreshSettingsCache(ctx, admin.ID)
	if err != nil {
		t.Fatalf("RefreshSettingsCache: %v", err)
	}
	if refreshed.Address != "Jl. Baru" {
		t.Fatalf("refreshed address = %q", refreshed.Address)
	}
	again, err := models.GetSettings(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetSettings after refresh: %v", err)
	}
	if again.Address != "Jl. Baru" {
		t.Fatalf("cache not repopulated, address = %q", again.Address)
	}
}

func TestPublicSettingsWhatsAppLink(t *testing.T) {
	setupStores(t)
	admin := createTestAdmin(t, "public", "TPQ Publik", "")
	ctx := adminContext(admin)
	if _, err := models.MergeSettings(ctx, admin.ID, &models.SettingsPatch{
		Whatsapp:        models.Some("081234567890"),
		WhatsappMessage: models.Some("Halo"),
	}); err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}

	public, err := models.GetPublicSettings(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("GetPublicSettings: %v", err)
	}
	if public.WhatsappLink != "https://wa.me/6281234567890?text=Halo" {
		t.Fatalf("whatsapp_link = %q", public.WhatsappLink)
	}
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
