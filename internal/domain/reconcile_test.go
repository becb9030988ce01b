package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseAlert() EventRecord {
	return EventRecord{
		ID:         "nc73589710",
		OriginTime: time.Date(2021, 5, 11, 14, 2, 7, 0, time.UTC),
		Lat:        34.05,
		Lon:        -118.25,
		DepthKm:    9.5,
		Magnitude:  4.2,
		Format:     FormatJSON,
	}
}

func TestReconcileNilOverride(t *testing.T) {
	out, err := Reconcile(baseAlert(), nil)
	require.NoError(t, err)
	assert.Equal(t, baseAlert(), out)
	assert.False(t, out.Authoritative)
}

func TestReconcileAppliesOverride(t *testing.T) {
	override := &OriginOverride{
		EventID:    "nc73589710",
		OriginTime: time.Date(2021, 5, 11, 14, 2, 8, 0, time.UTC),
		Lat:        34.06,
		Lon:        -118.26,
		DepthKm:    10.1,
		Magnitude:  4.3,
	}
	out, err := Reconcile(baseAlert(), override)
	require.NoError(t, err)

	assert.True(t, out.Authoritative)
	assert.Equal(t, 34.06, out.Lat)
	assert.Equal(t, -118.26, out.Lon)
	assert.Equal(t, 10.1, out.DepthKm)
	assert.Equal(t, 4.3, out.Magnitude)
	assert.Equal(t, override.OriginTime, out.OriginTime)

	// Provenance fields survive untouched.
	assert.Equal(t, "nc73589710", out.ID)
	assert.Equal(t, FormatJSON, out.Format)
}

func TestReconcileKeepsOriginTimeWhenOverrideOmitsIt(t *testing.T) {
	override := &OriginOverride{
		EventID:   "nc73589710",
		Lat:       34.06,
		Lon:       -118.26,
		DepthKm:   10.1,
		Magnitude: 4.3,
	}
	out, err := Reconcile(baseAlert(), override)
	require.NoError(t, err)
	assert.Equal(t, baseAlert().OriginTime, out.OriginTime)
}

func TestReconcileEventIDMismatch(t *testing.T) {
	override := &OriginOverride{
		EventID:   "nc00000000",
		Lat:       34.06,
		Lon:       -118.26,
		DepthKm:   10.1,
		Magnitude: 4.3,
	}
	_, err := Reconcile(baseAlert(), override)
	require.Error(t, err)
	assert.Equal(t, KindIncompatibleOverride, KindOf(err))
}

func TestReconcileRejectsInvalidOverrideLocation(t *testing.T) {
	override := &OriginOverride{
		EventID:   "nc73589710",
		Lat:       95.0,
		Lon:       -118.26,
		DepthKm:   10.1,
		Magnitude: 4.3,
	}
	_, err := Reconcile(baseAlert(), override)
	require.Error(t, err)
	assert.Equal(t, KindInvalidCoordinate, KindOf(err))
}
