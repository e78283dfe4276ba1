package config

import (
	"flag"
	"io"
	"strings"

	"github.com/dmitrijs2005/medvault/internal/flagx"
)

// ShortFlags lists the single-letter flags parseFlags understands. The
// CLI lets them pass through its own flag parsing.
var ShortFlags = []string{"-d", "-s", "-f", "-o", "-u", "-p", "-b", "-g", "-e", "-x", "-m", "-a", "-w", "-k", "-l", "-i"}

// parseFlags overlays config with short flags found in args.
//
//	-d string     PostgreSQL DSN
//	-s string     record store: postgres | bolt
//	-f string     bbolt file path
//	-o string     object store: s3 | memory
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket
//	-g string     S3 region
//	-e string     S3 base endpoint
//	-x duration   presigned URL expiry (e.g. 15m)
//	-m string     platform: web | native
//	-a string     viewer bind address
//	-w string     viewer public base URL
//	-k string     token secret
//	-l string     log format: json | text | zerolog
//	-i string     comma separated sensitive MIME types
//
// Arguments that are not in ShortFlags are ignored.
func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, ShortFlags)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RecordStore, "s", config.RecordStore, "record store")
	fs.StringVar(&config.BoltPath, "f", config.BoltPath, "bbolt file path")
	fs.StringVar(&config.ObjectStore, "o", config.ObjectStore, "object store")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignExpiry, "x", config.PresignExpiry, "presigned URL expiry")
	fs.StringVar(&config.Platform, "m", config.Platform, "platform")
	fs.StringVar(&config.ViewerAddr, "a", config.ViewerAddr, "viewer bind address")
	fs.StringVar(&config.ViewerBaseURL, "w", config.ViewerBaseURL, "viewer base URL")
	fs.StringVar(&config.TokenSecret, "k", config.TokenSecret, "token secret")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")
	sensitive := fs.String("i", strings.Join(config.SensitiveMIMETypes, ","), "sensitive MIME types")

	if err := fs.Parse(filtered); err != nil {
		return err
	}

	config.SensitiveMIMETypes = splitList(*sensitive)
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
