package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/larrabee/s3publish/storage"
	"github.com/larrabee/s3publish/storage/fs"
	"github.com/larrabee/s3publish/storage/s3"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultRegion = "us-east-1"

// errMissingCredentials is returned when no AWS key pair is configured.
var errMissingCredentials = errors.New("missing AWS keys, please supply both access key id and secret access key")

type argsParsed struct {
	args
	Target            connect
	AccessKey         string
	SecretKey         string
	Region            string
	Endpoint          string
	CheckModifiedTime bool
	Gzip              bool
	Expires           bool
	Force             bool
	Verbose           bool
	FilterNames       []string
}

type connect struct {
	Type   storage.Type
	Bucket string
}

type args struct {
	Source    string `arg:"positional,required" help:"Local site directory"`
	TargetURL string `arg:"positional" help:"Target bucket url, s3://bucket"`
	Config    string `arg:"--config,-c" help:"Site config file (yaml, toml or json) with publisher settings"`
	Publisher string `arg:"--publisher" help:"Read settings from publisher.<name> section of the config file"`
	// S3 config
	AccessKey string `arg:"--access-key-id,env:AWS_ACCESS_KEY_ID" help:"AWS key"`
	SecretKey string `arg:"--secret-access-key,env:AWS_SECRET_ACCESS_KEY" help:"AWS secret"`
	Region    string `arg:"--region" help:"AWS Region (default us-east-1)"`
	Endpoint  string `arg:"--endpoint" help:"AWS Endpoint"`
	S3Acl     string `arg:"--s3-acl" help:"S3 ACL for uploaded files. Possible values: private, public-read, public-read-write, aws-exec-read, authenticated-read, bucket-owner-read, bucket-owner-full-control"`
	// Publishing
	Gzip        bool     `arg:"--gzip,-z" help:"Gzip html, css, js, svg, ttf and pdf files larger than 1K"`
	Expires     bool     `arg:"--expires,-e" help:"Set Expires and Cache-Control headers"`
	Force       bool     `arg:"--force,-f" help:"Upload all files, even not modified"`
	NoCheckTime bool     `arg:"--no-check-mtime" help:"Do not compare modification time with uploaded objects"`
	FilterNames []string `arg:"--filter-name,separate" help:"Never upload files with given name (default .DS_Store)"`
	// Misc
	Verbose            bool `arg:"--verbose,-v" help:"Show per file diagnostic output"`
	SyncLog            bool `arg:"--sync-log" help:"Show sync log"`
	ShowProgress       bool `arg:"--sync-progress,-p" help:"Show sync progress"`
	RateLimitObjPerSec uint `arg:"--ratelimit-objects" help:"Rate limit objects per second"`
	RateLimitBandwidth int  `arg:"--ratelimit-bandwidth" help:"Set bandwidth rate limit, byte/s"`
}

// siteConfig is the publisher section of the site config file.
type siteConfig struct {
	URL                string `mapstructure:"url"`
	AccessKeyID        string `mapstructure:"accessKeyId"`
	SecretAccessKey    string `mapstructure:"secretAccessKey"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	Region             string `mapstructure:"region"`
	Endpoint           string `mapstructure:"endpoint"`
	CheckModifiedTime  bool   `mapstructure:"checkModifiedTime"`
	CheckMtime         *bool  `mapstructure:"check_mtime"`
	Gzip               bool   `mapstructure:"gzip"`
	Expires            bool   `mapstructure:"expires"`
	Force              bool   `mapstructure:"force"`
	Verbose            bool   `mapstructure:"verbose"`
}

//VersionId return program version string on human format
func (args) Version() string {
	return fmt.Sprintf("VersionId: %v, commit: %v, built at: %v", version, commit, date)
}

//Description return program description string
func (args) Description() string {
	return "Publish a generated site directory to S3"
}

func defaultArgs() args {
	return args{
		S3Acl: s3.DefaultACL,
	}
}

//GetCliArgs return cli args structure and error
func GetCliArgs() (cli argsParsed, err error) {
	rawCli := defaultArgs()
	p := arg.MustParse(&rawCli)

	if rawCli.ShowProgress && !isatty.IsTerminal(os.Stdout.Fd()) {
		p.Fail("Progress (--sync-progress) require tty")
	}
	return parseArgs(rawCli)
}

// parseArgs merges the site config file with cli args and validates the result.
// Values given on the command line win over the config file.
func parseArgs(rawCli args) (cli argsParsed, err error) {
	cli.args = rawCli

	site, err := loadSiteConfig(rawCli.Config, rawCli.Publisher)
	if err != nil {
		return cli, err
	}

	targetURL := firstNonEmpty(rawCli.TargetURL, site.URL)
	if cli.Target, err = parseConn(targetURL); err != nil {
		return cli, err
	}

	cli.AccessKey = firstNonEmpty(rawCli.AccessKey, site.AccessKeyID, site.AWSAccessKeyID)
	cli.SecretKey = firstNonEmpty(rawCli.SecretKey, site.SecretAccessKey, site.AWSSecretAccessKey)
	if cli.AccessKey == "" || cli.SecretKey == "" {
		return cli, errMissingCredentials
	}

	cli.Region = firstNonEmpty(rawCli.Region, site.Region, defaultRegion)
	cli.Endpoint = firstNonEmpty(rawCli.Endpoint, site.Endpoint)

	checkMtime := site.CheckModifiedTime
	if site.CheckMtime != nil {
		checkMtime = *site.CheckMtime
	}
	cli.CheckModifiedTime = checkMtime && !rawCli.NoCheckTime
	cli.Gzip = site.Gzip || rawCli.Gzip
	cli.Expires = site.Expires || rawCli.Expires
	cli.Force = site.Force || rawCli.Force
	cli.Verbose = site.Verbose || rawCli.Verbose

	cli.FilterNames = rawCli.FilterNames
	if len(cli.FilterNames) == 0 {
		cli.FilterNames = fs.DefaultFilterNames
	}

	if _, ok := s3ACLs[rawCli.S3Acl]; !ok {
		return cli, fmt.Errorf("--s3-acl must be one of \"private, public-read, public-read-write, aws-exec-read, authenticated-read, bucket-owner-read, bucket-owner-full-control\"")
	}
	return cli, nil
}

var s3ACLs = map[string]struct{}{
	"private":                   {},
	"public-read":               {},
	"public-read-write":         {},
	"aws-exec-read":             {},
	"authenticated-read":        {},
	"bucket-owner-read":         {},
	"bucket-owner-full-control": {},
}

// loadSiteConfig reads the site config file. Without a file the defaults are returned.
func loadSiteConfig(path, publisher string) (siteConfig, error) {
	v := viper.New()
	v.SetDefault("checkModifiedTime", true)

	site := siteConfig{}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return site, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if publisher != "" {
			sub := v.Sub("publisher." + publisher)
			if sub == nil {
				return site, fmt.Errorf("publisher %q not found in config %s", publisher, path)
			}
			sub.SetDefault("checkModifiedTime", true)
			v = sub
		}
	}

	if err := v.Unmarshal(&site); err != nil {
		return site, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return site, nil
}

func parseConn(cStr string) (conn connect, err error) {
	if cStr == "" {
		return conn, fmt.Errorf("target url is not set")
	}
	u, err := url.Parse(cStr)
	if err != nil {
		return conn, err
	}

	switch u.Scheme {
	case "s3":
		conn.Type = storage.TypeS3
		conn.Bucket = s3.BucketFromURL(cStr)
	default:
		return conn, fmt.Errorf("unsupported target url %q, expected s3://bucket", cStr)
	}
	if conn.Bucket == "" {
		return conn, fmt.Errorf("bucket name is empty in target url %q", cStr)
	}
	return
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
