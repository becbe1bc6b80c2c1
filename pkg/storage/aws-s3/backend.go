package awss3

import (
	"bytes"
	"errors"
	"io/ioutil"
	"net/url"
	p "path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/edgemirror/image-cache-server/pkg/e"
)

type Backend struct {
	BucketURL string
	Session   *session.Session
	Client    *s3.S3

	bucket string
	prefix string
	region string
}

func New(connectionString string) (*Backend, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String("us-east-1")})
	if err != nil {
		return &Backend{}, err
	}

	backend := Backend{
		BucketURL: connectionString,
		Session:   sess,
		region:    "us-east-1", // Region is calculated in Setup()
	}
	return &backend, nil
}

func (b *Backend) Setup() error {
	parsedURL, err := url.Parse(b.BucketURL)
	if err != nil {
		return err
	}

	if parsedURL.Scheme != "s3" {
		//goland:noinspection GoErrorStringFormat
		return errors.New("S3 url should be in the format of s3://bucket/prefix")
	}

	b.bucket = parsedURL.Host
	b.prefix = strings.TrimPrefix(parsedURL.Path, "/")

	b.Client = s3.New(b.Session, &aws.Config{Region: aws.String(b.region)})
	resp, err := b.Client.GetBucketLocation(&s3.GetBucketLocationInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		return err
	}

	if resp.LocationConstraint != nil {
		b.region = *resp.LocationConstraint
		b.Session.Config.Region = resp.LocationConstraint
		b.Client = s3.New(b.Session, &aws.Config{Region: resp.LocationConstraint})
	}

	return nil
}

func (b *Backend) Type() string {
	return "s3"
}

func (b *Backend) Put(key string, data []byte, contentType, cacheControl string) error {
	filePath := p.Join(b.prefix, key)

	uploader := s3manager.NewUploader(b.Session)
	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:       aws.String(b.bucket),
		Body:         bytes.NewReader(data),
		Key:          aws.String(filePath),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})

	return err
}

func (b *Backend) Get(key string) ([]byte, error) {
	filePath := p.Join(b.prefix, key)

	resp, err := b.Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(filePath),
	})
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, e.ErrObjectNotFound
		}
		return nil, err
	}
	defer resp.Body.Close()

	return ioutil.ReadAll(resp.Body)
}

func (b *Backend) Delete(key string) error {
	filePath := p.Join(b.prefix, key)

	_, err := b.Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(filePath),
	})

	return err
}
