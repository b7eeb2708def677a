package convo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/autostream/internal/domain"
)

func qualifiedRecord() *domain.SessionRecord {
	rec := domain.NewSessionRecord("s")
	rec.Intent = domain.IntentHighIntent
	rec.Name = "Sarah"
	rec.Email = "sarah@x.com"
	rec.Platform = "YouTube"
	rec.SelectedPlan = "pro"
	return rec
}

func TestShouldCapture(t *testing.T) {
	assert.True(t, ShouldCapture(qualifiedRecord()))
}

func TestShouldNotCaptureWhenAlreadyCaptured(t *testing.T) {
	rec := qualifiedRecord()
	rec.LeadCaptured = true
	assert.False(t, ShouldCapture(rec))
}

func TestShouldNotCaptureWithoutHighIntent(t *testing.T) {
	rec := qualifiedRecord()
	rec.Intent = domain.IntentPricing
	assert.False(t, ShouldCapture(rec))
}

func TestShouldNotCaptureWithMissingFields(t *testing.T) {
	for _, clear := range []func(*domain.SessionRecord){
		func(r *domain.SessionRecord) { r.Name = "" },
		func(r *domain.SessionRecord) { r.Email = "" },
		func(r *domain.SessionRecord) { r.Platform = "" },
		func(r *domain.SessionRecord) { r.SelectedPlan = "" },
	} {
		rec := qualifiedRecord()
		clear(rec)
		assert.False(t, ShouldCapture(rec))
	}
}

func TestMissingFields(t *testing.T) {
	rec := domain.NewSessionRecord("s")
	rec.Email = "sarah@x.com"
	assert.Equal(t, []string{"Name", "Platform", "Plan selection"}, MissingFields(rec))

	assert.Nil(t, MissingFields(qualifiedRecord()))
}
