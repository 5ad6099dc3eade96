package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"sensor-anomaly-service/internal/core/domain"
)

func TestStore_Key(t *testing.T) {
	assert.Equal(t, "anomaly_plot.png", (&Store{}).key("anomaly_plot.png"))
	assert.Equal(t, "runs/latest/anomaly_plot.png", (&Store{prefix: "runs/latest"}).key("anomaly_plot.png"))
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate("a.csv", minio.ErrorResponse{Code: "NoSuchKey"}), domain.ErrArtifactNotFound)

	err := translate("a.csv", errors.New("connection refused"))
	assert.NotErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.Contains(t, err.Error(), "a.csv")
}

func TestStore_RejectsInvalidNames(t *testing.T) {
	s := &Store{}
	assert.ErrorIs(t, s.Put(context.Background(), "../x", "", nil), domain.ErrInvalidArtifactName)

	_, _, err := s.Open(context.Background(), "a/b")
	assert.ErrorIs(t, err, domain.ErrInvalidArtifactName)
}
