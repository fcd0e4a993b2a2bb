package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vedant281104/AgriShield/internal/common"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/netx"
)

// MaxArtifactBytes bounds any model artifact read from disk or the network.
const MaxArtifactBytes = 256 << 20

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Options configures access to an S3-compatible store for s3:// URIs.
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// Loader resolves model URIs:
//
//	models/m2.json, file://models/m2.json  local linear model artifact
//	s3://bucket/key.json                   linear model artifact in object storage
//	https://host/m2.json                   linear model artifact over HTTP
//	grpc://host:port                       remote scorer service
//
// Remote connections opened by Load are released by Close.
type Loader struct {
	S3         S3Options
	HTTPClient *http.Client
	Logger     logging.Logger

	mu      sync.Mutex
	closers []io.Closer
}

func (l *Loader) Load(ctx context.Context, uri string) (Model, error) {
	m, err := l.load(ctx, uri)
	if err != nil {
		return nil, logging.NewOperationError("inference.load", logging.RequestIDFromContext(ctx), fmt.Errorf("%s: %w", redact(uri), err))
	}
	return m, nil
}

func (l *Loader) load(ctx context.Context, uri string) (Model, error) {
	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		scheme, rest = "file", uri
	}

	switch scheme {
	case "file":
		data, err := readFileLimited(rest)
		if err != nil {
			return nil, err
		}
		return l.parse(ctx, uri, data)

	case "s3":
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, errors.New("s3 uri must be s3://bucket/key")
		}
		data, err := l.fetchS3(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return l.parse(ctx, uri, data)

	case "http", "https":
		data, err := netx.Fetch(ctx, l.HTTPClient, uri, MaxArtifactBytes)
		if err != nil {
			return nil, err
		}
		return l.parse(ctx, uri, data)

	case "grpc":
		m, err := DialRemote(rest)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.closers = append(l.closers, m)
		l.mu.Unlock()
		l.info(ctx, "using remote scorer", "target", rest)
		return m, nil

	default:
		return nil, fmt.Errorf("%w: model uri scheme %q", common.ErrUnsupportedScheme, scheme)
	}
}

func (l *Loader) parse(ctx context.Context, uri string, data []byte) (Model, error) {
	m, err := ParseLinearModel(data)
	if err != nil {
		return nil, err
	}
	l.info(ctx, "loaded model", "uri", redact(uri), "name", m.Name(), "outputs", m.Outputs())
	return m, nil
}

func (l *Loader) fetchS3(ctx context.Context, bucket, key string) ([]byte, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(l.S3.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			l.S3.AccessKey,
			l.S3.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3Client(cfg, func(o *s3.Options) {
		if l.S3.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(l.S3.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return readLimited(out.Body)
}

// Close releases remote scorer connections.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	l.closers = nil
	return errors.Join(errs...)
}

func (l *Loader) info(ctx context.Context, msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Info(ctx, msg, args...)
	}
}

func readFileLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxArtifactBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxArtifactBytes {
		return nil, fmt.Errorf("artifact exceeds %d bytes", MaxArtifactBytes)
	}
	return b, nil
}

// redact drops userinfo and query strings (presigned URLs) from uri.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return uri
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
