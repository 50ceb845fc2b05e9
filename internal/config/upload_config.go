package config

import "strings"

type UploadConfig interface {
	GetMaxUploadBytes() int64
	GetResumeExtensions() []string
	GetArchiveBucket() string
	GetS3Endpoint() string
	GetS3Region() string
	GetS3AccessKey() string
	GetS3SecretKey() string
	GetS3UsePathStyle() bool
}

type Upload struct{}

var _ UploadConfig = Upload{}

func (Upload) GetMaxUploadBytes() int64 {
	return int64(GetEnvInt("MAX_UPLOAD_MB", 10)) << 20
}

func (Upload) GetResumeExtensions() []string {
	var exts []string
	for _, e := range strings.Split(GetEnv("RESUME_EXTENSIONS", ".pdf,.docx"), ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

// GetArchiveBucket enables the S3 résumé archive when non-empty.
func (Upload) GetArchiveBucket() string {
	return GetEnv("S3_BUCKET_NAME", "")
}

// GetS3Endpoint overrides the AWS endpoint, e.g. for MinIO ("http://localhost:9000").
func (Upload) GetS3Endpoint() string {
	return GetEnv("S3_ENDPOINT", "")
}

func (Upload) GetS3Region() string {
	return GetEnv("S3_REGION", "us-east-1")
}

func (Upload) GetS3AccessKey() string {
	return GetEnv("S3_ACCESS_KEY", "")
}

func (Upload) GetS3SecretKey() string {
	return GetEnv("S3_SECRET_KEY", "")
}

func (Upload) GetS3UsePathStyle() bool {
	return GetEnvBool("S3_USE_PATH_STYLE", true)
}
