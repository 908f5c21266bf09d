// SPDX-License-Identifier: MIT

package formats

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/avgraph/internal/media"
)

func sinkLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf), &buf
}

func TestValidateFormatLists(t *testing.T) {
	lg, buf := sinkLogger()

	require.NoError(t, ValidatePixelFormats(lg, NewSet(media.PixFmtYUV420P, media.PixFmtNV12)))
	require.NoError(t, ValidateSampleFormats(lg, NewSet(media.SampleFmtS16, media.SampleFmtFLTP)))
	assert.Zero(t, buf.Len(), "valid sets stay silent")

	err := ValidatePixelFormats(lg, NewSet(media.PixFmtYUV420P, media.PixFmtNV12, media.PixFmtYUV420P))
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, buf.String(), "duplicated candidate")

	err = ValidateSampleFormats(lg, NewSet[int]())
	require.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, ValidatePixelFormats(lg, nil), "absent sets are not this check's business")
}

func TestValidateSampleRates(t *testing.T) {
	lg, _ := sinkLogger()

	require.NoError(t, ValidateSampleRates(lg, NewSet(44100, 48000)))
	require.NoError(t, ValidateSampleRates(lg, AllSampleRates()), "empty rates mean any rate")

	err := ValidateSampleRates(lg, NewSet(48000, 48000))
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestValidateChannelLayouts(t *testing.T) {
	tests := []struct {
		name    string
		set     *LayoutSet
		wantErr error
	}{
		{"clean concrete", NewLayoutSet(media.LayoutStereo, media.Layout5Point1), nil},
		{"clean with token", NewLayoutSet(media.LayoutStereo, EncodeCount(6)), nil},
		{"wildcard", AllChannelLayouts(), nil},
		{"count wildcard", AllChannelCounts(), nil},
		{"nil set", nil, nil},
		{"empty", NewLayoutSet(), ErrEmpty},
		{"duplicate layout", NewLayoutSet(media.LayoutStereo, media.LayoutStereo), ErrDuplicate},
		{"duplicate token", NewLayoutSet(EncodeCount(2), EncodeCount(2)), ErrDuplicate},
		{"token shadows layout", NewLayoutSet(media.LayoutStereo, EncodeCount(2)), ErrLayoutConflict},
		{"layout shadows token", NewLayoutSet(EncodeCount(6), media.Layout5Point1), ErrLayoutConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lg, buf := sinkLogger()
			err := ValidateChannelLayouts(lg, tc.set)
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Zero(t, buf.Len())
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			assert.NotZero(t, buf.Len(), "violations are reported to the sink")
		})
	}
}

func TestValidateChannelLayoutsWildcardDrift(t *testing.T) {
	lg, _ := sinkLogger()

	// States no constructor produces still get flagged.
	bad := &LayoutSet{allCounts: true}
	require.ErrorIs(t, ValidateChannelLayouts(lg, bad), ErrLayoutConflict)

	bad = &LayoutSet{allLayouts: true, layouts: []media.ChannelLayout{media.LayoutStereo}}
	require.ErrorIs(t, ValidateChannelLayouts(lg, bad), ErrLayoutConflict)
}
