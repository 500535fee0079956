package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/config"
)

// Options holds object store connection settings shared by both backends.
type Options struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	Region     string
	PublicURL  string
	PresignTTL time.Duration
}

// OptionsFrom maps the application storage config onto Options.
func OptionsFrom(cfg config.StorageConfig) Options {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return Options{
		Endpoint:   cfg.Endpoint,
		AccessKey:  cfg.AccessKey,
		SecretKey:  cfg.SecretKey,
		UseSSL:     cfg.UseSSL,
		Bucket:     cfg.Bucket,
		Region:     cfg.Region,
		PublicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		PresignTTL: ttl,
	}
}

// publicObjectURL joins the public base URL and an object key, escaping each
// key segment.
func publicObjectURL(base, key string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid public url: %w", err)
	}
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segs, "/")
	u.RawPath = ""
	return u.String(), nil
}
