package production

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/database/testutil"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/masterdata"
	"github.com/mmcl/printrun/internal/repository/records"
)

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T) (*Service, *masterdata.Catalog) {
	t.Helper()
	cat, err := masterdata.Load("")
	require.NoError(t, err)
	repo := records.NewGormRepository(testutil.DB(t), nil)
	return NewService(repo, cat, nil), cat
}

func user(t *testing.T, cat *masterdata.Catalog, id int64) models.User {
	t.Helper()
	u, ok := cat.User(id)
	require.True(t, ok)
	return u
}

func validInput() CreateRecordInput {
	return CreateRecordInput{
		PublicationID: ptr(int64(5)),
		PONumber:      1001,
		ColorPages:    4,
		BWPages:       20,
		MachineID:     2,
		LPRSTime:      "1:30",
		PageStartTime: "23:00",
		PageEndTime:   "01:00:00",
		RecordDate:    "2024-03-01",
		DowntimeEntries: []models.DowntimeEntryInput{
			{DowntimeReasonID: 1, DowntimeDuration: "00:15:00"},
			{DowntimeReasonID: 0, DowntimeDuration: "00:10:00"},
			{DowntimeReasonID: 2, DowntimeDuration: ""},
		},
	}
}

func TestCreateNormalisesAndDefaultsOwner(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()

	stored, err := svc.Create(ctx, user(t, cat, 1), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stored.UserID)
	assert.Equal(t, 24, stored.TotalPages)
	assert.Equal(t, "01:30:00", stored.LPRSTime)
	assert.Equal(t, "23:00:00", stored.PageStartTime)
	require.Len(t, stored.DowntimeEntries, 1)
	assert.Equal(t, int64(1), stored.DowntimeEntries[0].DowntimeReasonID)
	assert.Equal(t, "00:15:00", stored.DowntimeEntries[0].DowntimeDuration)
}

func TestCreateOnBehalfOfAnotherUser(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()

	in := validInput()
	in.UserID = ptr(int64(2))

	_, err := svc.Create(ctx, user(t, cat, 1), in)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	stored, err := svc.Create(ctx, user(t, cat, 11), in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.UserID)
}

func TestCreateValidation(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()
	actor := user(t, cat, 1)

	cases := map[string]func(in *CreateRecordInput){
		"missing machine":       func(in *CreateRecordInput) { in.MachineID = 0 },
		"unknown machine":       func(in *CreateRecordInput) { in.MachineID = 42 },
		"missing po":            func(in *CreateRecordInput) { in.PONumber = 0 },
		"unknown publication":   func(in *CreateRecordInput) { in.PublicationID = ptr(int64(99)) },
		"no publication":        func(in *CreateRecordInput) { in.PublicationID = nil; in.CustomPublicationName = ptr("  ") },
		"both kinds":            func(in *CreateRecordInput) { in.CustomPublicationName = ptr("Special") },
		"unknown newsprint":     func(in *CreateRecordInput) { in.NewsprintID = ptr(int64(9)) },
		"negative plates":       func(in *CreateRecordInput) { in.PlateConsumption = -1 },
		"negative kgs":          func(in *CreateRecordInput) { in.NewsprintKgs = -0.5 },
		"long remarks":          func(in *CreateRecordInput) { in.Remarks = strings.Repeat("x", 101) },
		"bad time":              func(in *CreateRecordInput) { in.PageEndTime = "25:00" },
		"bad date":              func(in *CreateRecordInput) { in.RecordDate = "01/03/2024" },
		"missing date":          func(in *CreateRecordInput) { in.RecordDate = "" },
		"unknown reason": func(in *CreateRecordInput) {
			in.DowntimeEntries = []models.DowntimeEntryInput{{DowntimeReasonID: 77, DowntimeDuration: "00:01:00"}}
		},
		"bad duration": func(in *CreateRecordInput) {
			in.DowntimeEntries = []models.DowntimeEntryInput{{DowntimeReasonID: 1, DowntimeDuration: "a while"}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(ctx, actor, in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCreateOneTimePublication(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()

	in := validInput()
	in.PublicationID = nil
	in.CustomPublicationName = ptr("  Election Special ")

	stored, err := svc.Create(ctx, user(t, cat, 3), in)
	require.NoError(t, err)
	assert.Nil(t, stored.PublicationID)
	assert.Equal(t, "Election Special", *stored.CustomPublicationName)

	_, err = svc.Create(ctx, user(t, cat, 3), validInput())
	require.NoError(t, err)

	oneTime, err := svc.OneTimePublications(ctx)
	require.NoError(t, err)
	require.Len(t, oneTime, 1)
	assert.Equal(t, OneTimePublication{
		ID:                    stored.ID,
		CustomPublicationName: "Election Special",
		User:                  "Mysore Operator",
		RecordDate:            "2024-03-01",
	}, oneTime[0])
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()
	owner := user(t, cat, 1)
	other := user(t, cat, 2)
	admin := user(t, cat, 11)

	stored, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	patch := models.RecordPatch{Remarks: ptr("ink ran low")}
	_, err = svc.Update(ctx, other, stored.ID, patch)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	_, err = svc.Update(ctx, admin, stored.ID, patch)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	updated, err := svc.Update(ctx, owner, stored.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "ink ran low", updated.Remarks)

	assert.True(t, apperr.Is(svc.Delete(ctx, other, stored.ID), apperr.KindAuthorization))
	require.NoError(t, svc.Delete(ctx, owner, stored.ID))

	_, err = svc.Get(ctx, stored.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.Delete(ctx, owner, stored.ID), apperr.KindNotFound))
}

func TestUpdateValidatesPatch(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()
	owner := user(t, cat, 1)

	stored, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, stored.ID, models.RecordPatch{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	bad := []models.RecordPatch{
		{MachineID: ptr(int64(9))},
		{ColorPages: ptr(-3)},
		{PageStartTime: ptr("noon")},
		{RecordDate: ptr("2024-13-01")},
		{CustomPublicationName: ptr(" ")},
		{DowntimeEntries: &[]models.DowntimeEntryInput{{DowntimeReasonID: 0, DowntimeDuration: "00:01:00"}}},
	}
	for _, p := range bad {
		_, err := svc.Update(ctx, owner, stored.ID, p)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "patch %+v gave %v", p, err)
	}

	updated, err := svc.Update(ctx, owner, stored.ID, models.RecordPatch{
		PageEndTime:     ptr("2:15"),
		DowntimeEntries: &[]models.DowntimeEntryInput{{DowntimeReasonID: 4, DowntimeDuration: "0:05"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "02:15:00", updated.PageEndTime)
	require.Len(t, updated.DowntimeEntries, 1)
	assert.Equal(t, "00:05:00", updated.DowntimeEntries[0].DowntimeDuration)

	_, err = svc.Update(ctx, owner, stored.ID+50, models.RecordPatch{Remarks: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListByUserAndLocationFilter(t *testing.T) {
	svc, cat := newService(t)
	ctx := context.Background()

	for _, uid := range []int64{1, 1, 2, 11} {
		_, err := svc.Create(ctx, user(t, cat, uid), validInput())
		require.NoError(t, err)
	}

	mine, err := svc.ListByUser(ctx, 1, "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	f, err := BuildFilter(cat, FilterQuery{Location: "hubli"})
	require.NoError(t, err)
	hubli, err := svc.List(ctx, f)
	require.NoError(t, err)
	require.Len(t, hubli, 1)
	assert.Equal(t, int64(2), hubli[0].UserID)

	f, err = BuildFilter(cat, FilterQuery{Location: "Atlantis"})
	require.NoError(t, err)
	none, err := svc.List(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, none)
}
