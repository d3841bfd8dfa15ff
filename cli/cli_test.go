package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/larrabee/s3publish/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withKeys(a args) args {
	a.AccessKey = "AKID"
	a.SecretKey = "SECRET"
	return a
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseConn(t *testing.T) {
	conn, err := parseConn("s3://www.example.com")
	require.NoError(t, err)
	assert.Equal(t, storage.TypeS3, conn.Type)
	assert.Equal(t, "www.example.com", conn.Bucket)

	_, err = parseConn("")
	assert.Error(t, err)
	_, err = parseConn("gs://bucket")
	assert.Error(t, err)
	_, err = parseConn("s3://")
	assert.Error(t, err)
}

func TestParseArgsDefaults(t *testing.T) {
	raw := withKeys(defaultArgs())
	raw.Source = "/site/output"
	raw.TargetURL = "s3://www.example.com"

	cli, err := parseArgs(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", cli.Target.Bucket)
	assert.Equal(t, "us-east-1", cli.Region)
	assert.True(t, cli.CheckModifiedTime)
	assert.False(t, cli.Gzip)
	assert.False(t, cli.Expires)
	assert.False(t, cli.Force)
	assert.False(t, cli.Verbose)
	assert.Equal(t, []string{".DS_Store"}, cli.FilterNames)
	assert.Equal(t, "public-read", cli.S3Acl)
}

func TestParseArgsMissingCredentials(t *testing.T) {
	raw := defaultArgs()
	raw.Source = "/site/output"
	raw.TargetURL = "s3://www.example.com"
	raw.AccessKey = "AKID"

	_, err := parseArgs(raw)
	assert.ErrorIs(t, err, errMissingCredentials)
}

func TestParseArgsBadACL(t *testing.T) {
	raw := withKeys(defaultArgs())
	raw.Source = "/site/output"
	raw.TargetURL = "s3://www.example.com"
	raw.S3Acl = "world-writable"

	_, err := parseArgs(raw)
	assert.Error(t, err)
}

func TestParseArgsSiteConfig(t *testing.T) {
	path := writeConfig(t, "site.yaml", `
url: s3://www.example.com
accessKeyId: FILEKEY
secretAccessKey: FILESECRET
gzip: true
expires: true
checkModifiedTime: false
region: eu-west-1
`)
	raw := defaultArgs()
	raw.Source = "/site/output"
	raw.Config = path
	raw.Force = true

	cli, err := parseArgs(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", cli.Target.Bucket)
	assert.Equal(t, "FILEKEY", cli.AccessKey)
	assert.Equal(t, "FILESECRET", cli.SecretKey)
	assert.Equal(t, "eu-west-1", cli.Region)
	assert.True(t, cli.Gzip)
	assert.True(t, cli.Expires)
	assert.True(t, cli.Force)
	assert.False(t, cli.CheckModifiedTime)
}

func TestParseArgsPublisherSection(t *testing.T) {
	path := writeConfig(t, "site.yaml", `
publisher:
  bff:
    url: s3://www.yourdomain.com
    AWS_ACCESS_KEY_ID: YOURACCESSKEY
    AWS_SECRET_ACCESS_KEY: YourSecret
    check_mtime: true
    verbose: true
`)
	raw := defaultArgs()
	raw.Source = "/site/output"
	raw.Config = path
	raw.Publisher = "bff"
	raw.TargetURL = "s3://override.example.com"

	cli, err := parseArgs(raw)
	require.NoError(t, err)
	assert.Equal(t, "override.example.com", cli.Target.Bucket)
	assert.Equal(t, "YOURACCESSKEY", cli.AccessKey)
	assert.Equal(t, "YourSecret", cli.SecretKey)
	assert.True(t, cli.CheckModifiedTime)
	assert.True(t, cli.Verbose)

	raw.Publisher = "missing"
	_, err = parseArgs(raw)
	assert.Error(t, err)
}

func TestParseArgsNoCheckMtimeFlag(t *testing.T) {
	raw := withKeys(defaultArgs())
	raw.Source = "/site/output"
	raw.TargetURL = "s3://www.example.com"
	raw.NoCheckTime = true

	cli, err := parseArgs(raw)
	require.NoError(t, err)
	assert.False(t, cli.CheckModifiedTime)
}
