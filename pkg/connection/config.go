package connection

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/lumeer/lumeer.go/internal/codec"
	"github.com/lumeer/lumeer.go/pkg/constants"
	"github.com/lumeer/lumeer.go/pkg/logger"
)

// Config carries everything a connection needs. NewConfig fills in the
// defaults: the CBOR wire codec and an slog text logger on stdout.
type Config struct {
	URL         url.URL
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      logger.Logger
	Timeout     time.Duration
}

func NewConfig(u *url.URL) *Config {
	wire := codec.NewCBOR()
	return &Config{
		URL:         *u,
		BaseURL:     fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Marshaler:   wire,
		Unmarshaler: wire,
		Logger:      logger.New(slog.NewTextHandler(os.Stdout, nil)),
		Timeout:     constants.DefaultWSTimeout,
	}
}
