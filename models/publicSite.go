package models

import (
	"context"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
)

// PublicSettings is what the public marketing site may see of a tenant.
type PublicSettings struct {
	SiteName         string `json:"site_name"`
	SiteDescription  string `json:"site_description"`
	LogoUrl          string `json:"logo_url"`
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Whatsapp         string `json:"whatsapp"`
	WhatsappLink     string `json:"whatsapp_link"`
	HeroTitle        string `json:"hero_title"`
	HeroSubtitle     string `json:"hero_subtitle"`
	AboutTitle       string `json:"about_title"`
	AboutDescription string `json:"about_description"`
	FacebookUrl      string `json:"facebook_url"`
	InstagramUrl     string `json:"instagram_url"`
	YoutubeUrl       string `json:"youtube_url"`
	WeekdayHours     string `json:"weekday_hours"`
	WeekendHours     string `json:"weekend_hours"`
	PrimaryColor     string `json:"primary_color"`
	SecondaryColor   string `json:"secondary_color"`
}

func (s *TenantSetting) ToPublic() *PublicSettings {
	return &PublicSettings{
		SiteName:         s.SiteName,
		SiteDescription:  s.SiteDescription,
		LogoUrl:          s.LogoUrl,
		Address:          s.Address,
		Phone:            s.Phone,
		Email:            s.Email,
		Whatsapp:         s.Whatsapp,
		WhatsappLink:     utils.WhatsAppLink(s.Whatsapp, config.PhoneRegion(), s.WhatsappMessage),
		HeroTitle:        s.HeroTitle,
		HeroSubtitle:     s.HeroSubtitle,
		AboutTitle:       s.AboutTitle,
		AboutDescription: s.AboutDescription,
		FacebookUrl:      s.FacebookUrl,
		InstagramUrl:     s.InstagramUrl,
		YoutubeUrl:       s.YoutubeUrl,
		WeekdayHours:     s.WeekdayHours,
		WeekendHours:     s.WeekendHours,
		PrimaryColor:     s.PrimaryColor,
		SecondaryColor:   s.SecondaryColor,
	}
}

func GetPublicSettings(ctx context.Context, adminId string) (*PublicSettings, error) {
	setting, err := GetSettings(ctx, adminId)
	if err != nil {
		return nil, err
	}
	return setting.ToPublic(), nil
}
