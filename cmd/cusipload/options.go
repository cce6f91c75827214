package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/cusip/internal/config"
	"github.com/JonMunkholm/cusip/internal/core"
	"github.com/JonMunkholm/cusip/internal/source"
)

// mode is the file source a run reads from.
type mode int

const (
	modeFiles  mode = iota // explicit local files
	modeS3Key              // one S3 object
	modeS3Date             // every file in a bucket for a date
	modeDir                // every file in a local directory for a date
)

// options holds the parsed command line.
type options struct {
	files    []string
	fileType string

	s3Bucket   string
	s3Key      string
	s3Prefix   string
	s3Region   string
	s3Endpoint string
	dir        string
	prefix     string
	date       string

	databaseURL string
	host        string
	port        int
	dbname      string
	user        string
	password    string
	secretID    string

	logLevel  string
	logFormat string
}

// validate checks flag combinations and returns the selected mode.
func (o *options) validate() (mode, error) {
	hasFiles := len(o.files) > 0

	switch {
	case hasFiles && o.s3Bucket != "":
		return 0, errors.New("cannot specify both local files and --s3-bucket")
	case hasFiles && o.dir != "":
		return 0, errors.New("cannot specify both local files and --dir")
	case o.s3Bucket != "" && o.dir != "":
		return 0, errors.New("cannot specify both --s3-bucket and --dir")
	case !hasFiles && o.s3Bucket == "" && o.dir == "":
		return 0, errors.New("must specify local files, --s3-bucket or --dir")
	case o.s3Key != "" && o.s3Bucket == "":
		return 0, errors.New("--s3-key requires --s3-bucket")
	case o.date != "" && o.s3Bucket == "" && o.dir == "":
		return 0, errors.New("--date requires --s3-bucket or --dir")
	case o.s3Key != "" && o.date != "":
		return 0, errors.New("cannot specify both --s3-key and --date")
	case o.s3Bucket != "" && o.s3Key == "" && o.date == "":
		return 0, errors.New("--s3-bucket requires either --s3-key or --date")
	case o.dir != "" && o.date == "":
		return 0, errors.New("--dir requires --date")
	}

	if o.date != "" {
		if o.fileType != "" {
			return 0, errors.New("--type cannot be used with --date; every kind is loaded in order")
		}
		if _, err := source.ParseDate(o.date); err != nil {
			return 0, err
		}
	}
	if o.fileType != "" {
		if _, err := core.ParseFileKind(o.fileType); err != nil {
			return 0, err
		}
	}

	switch {
	case hasFiles:
		return modeFiles, nil
	case o.s3Key != "":
		return modeS3Key, nil
	case o.s3Bucket != "":
		return modeS3Date, nil
	}
	return modeDir, nil
}

// kindFor returns --type when given, otherwise the kind implied by name.
func (o *options) kindFor(name string) (core.FileKind, error) {
	if o.fileType != "" {
		return core.ParseFileKind(o.fileType)
	}
	kind, ok := core.KindFromFilename(name)
	if !ok {
		return "", fmt.Errorf("cannot detect file type for %s; use --type", name)
	}
	return kind, nil
}

// database picks the connection target. Flags win over the environment:
// --database-url, then --dbname/--user, then --db-secret-id, then
// DATABASE_URL, then DB_SECRET_ID. Exactly one of the returned values is set.
func (o *options) database(env config.DatabaseConfig) (dbURL, secretID string, err error) {
	switch {
	case o.databaseURL != "":
		return o.databaseURL, "", nil
	case o.dbname != "":
		if o.user == "" {
			return "", "", errors.New("--dbname requires --user")
		}
		return o.discreteURL(), "", nil
	case o.secretID != "":
		return "", o.secretID, nil
	case env.URL != "":
		return env.URL, "", nil
	case env.SecretID != "":
		return "", env.SecretID, nil
	}
	return "", "", errors.New("no database configured: use --database-url, --dbname with --user, --db-secret-id or DATABASE_URL")
}

func (o *options) discreteURL() string {
	user := url.User(o.user)
	if o.password != "" {
		user = url.UserPassword(o.user, o.password)
	}
	u := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   net.JoinHostPort(o.host, strconv.Itoa(o.port)),
		Path:   "/" + o.dbname,
	}
	return u.String()
}

// sourceConfig describes the S3 or directory source for a run.
func (o *options) sourceConfig() config.SourceConfig {
	cfg := config.SourceConfig{
		Type:       config.SourceLocal,
		Dir:        o.dir,
		Prefix:     o.prefix,
		S3Bucket:   o.s3Bucket,
		S3Prefix:   o.s3Prefix,
		S3Region:   o.s3Region,
		S3Endpoint: o.s3Endpoint,
	}
	if o.s3Bucket != "" {
		cfg.Type = config.SourceS3
	}
	return cfg
}
