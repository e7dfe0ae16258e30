package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/masterdata"
)

func TestBuildFilter(t *testing.T) {
	cat, err := masterdata.Load("")
	require.NoError(t, err)

	f, err := BuildFilter(cat, FilterQuery{
		PublicationIDs: "1, 5,,7",
		PublicationID:  "9",
		StartDate:      "2024-03-01",
		EndDate:        "2024-03-31",
		Location:       "Bangalore",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RecordFilter{
		StartDate:      "2024-03-01",
		EndDate:        "2024-03-31",
		PublicationIDs: []int64{1, 5, 7, 9},
		RestrictUsers:  true,
		UserIDs:        []int64{11, 12, 13},
	}, f)

	empty, err := BuildFilter(cat, FilterQuery{})
	require.NoError(t, err)
	assert.Equal(t, models.RecordFilter{}, empty)
}

func TestBuildFilterRejectsBadInput(t *testing.T) {
	cat, err := masterdata.Load("")
	require.NoError(t, err)

	for name, q := range map[string]FilterQuery{
		"id list":     {PublicationIDs: "1,two"},
		"negative id": {PublicationID: "-4"},
		"start date":  {StartDate: "March 1"},
		"end date":    {EndDate: "2024-02-30"},
		"range order": {StartDate: "2024-03-05", EndDate: "2024-03-01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildFilter(cat, q)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}
