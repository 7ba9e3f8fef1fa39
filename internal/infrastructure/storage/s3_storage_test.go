package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/resumescore/backend/internal/infrastructure/config"
)

func TestNewS3ResumeArchive_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ResumeArchive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3ResumeArchive(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3ResumeArchive(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:      "test-bucket",
			AccessKeyID: "test-key",
		}
		_, err := NewS3ResumeArchive(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates archive", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Region:          "us-east-1",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
			PresignExpiry:   15 * time.Minute,
		}
		archive, err := NewS3ResumeArchive(cfg)
		require.NoError(t, err)
		require.NotNil(t, archive)
		assert.Equal(t, "test-bucket", archive.GetBucket())
		assert.Equal(t, 15*time.Minute, archive.presignExpiration)
	})

	t.Run("scheme-less endpoint is accepted", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "minio.internal:9000",
		}
		archive, err := NewS3ResumeArchive(cfg)
		require.NoError(t, err)
		require.NotNil(t, archive)
	})

	t.Run("default presign expiration applied", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		archive, err := NewS3ResumeArchive(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, archive.presignExpiration)
	})
}

func TestS3ResumeArchive_BuildKey(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	}
	archive, err := NewS3ResumeArchive(cfg, WithKeyPrefix("uploads"))
	require.NoError(t, err)

	key := archive.buildKey("My Resume (final).pdf")
	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.True(t, strings.HasSuffix(key, "My_Resume__final_.pdf"))
	assert.NotContains(t, key, " ")

	// Path components are stripped from hostile file names
	key = archive.buildKey("../../etc/passwd")
	assert.NotContains(t, key, "..")

	// Empty names get a stable fallback
	key = archive.buildKey("")
	assert.True(t, strings.HasSuffix(key, "-resume"))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name kept", "resume.pdf", "resume.pdf"},
		{"spaces replaced", "john doe.pdf", "john_doe.pdf"},
		{"path stripped", "/tmp/upload/resume.pdf", "resume.pdf"},
		{"empty falls back", "", "resume"},
		{"dot falls back", ".", "resume"},
		{"unicode replaced", "简历.pdf", "__.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeFileName(tt.input))
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFor("resume.PDF"))
	assert.Equal(t, "application/json", contentTypeFor("resume.json"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("resume.docx"))
}
