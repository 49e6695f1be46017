package forms

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-console/internal/models"
)

type MockRepository[E models.Entity] struct {
	mock.Mock
	res models.Resource
}

func (m *MockRepository[E]) Resource() models.Resource {
	return m.res
}

func (m *MockRepository[E]) GetByID(ctx context.Context, id string) (E, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		var zero E
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

func (m *MockRepository[E]) Create(ctx context.Context, payload E) (E, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		var zero E
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

func (m *MockRepository[E]) Update(ctx context.Context, id string, patch models.Patch) (E, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		var zero E
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

type recorder struct {
	paths []string
}

func (r *recorder) Navigate(path string) {
	r.paths = append(r.paths, path)
}

var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func validDriverForm() *DriverForm {
	f := NewDriverForm()
	f.FirstName = "Mario"
	f.LastName = "Rossi"
	f.FiscalCode = "rssmra80a01f205x"
	f.Phone = "+39 333 1234567"
	f.LicenseNumber = "MI1234567"
	f.LicenseExpiry = fixedNow.AddDate(1, 0, 0)
	f.CQCExpiry = fixedNow.AddDate(2, 0, 0)
	f.HireDate = fixedNow.AddDate(-3, 0, 0)
	return f
}

func TestController_SubmitInvalidNeverCallsBackend(t *testing.T) {
	repo := &MockRepository[*models.Driver]{res: models.DriverResource}
	nav := &recorder{}
	log, _ := test.NewNullLogger()
	c := NewController[*models.Driver](repo, NewDriverForm(), nav, log)

	assert.Empty(t, c.ShowError("firstName"))
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.True(t, c.Touched())
	assert.False(t, c.Saving())
	assert.Equal(t, "Campo obbligatorio", c.ShowError("firstName"))
	assert.Greater(t, c.ErrorCount(), 3)
	assert.Empty(t, nav.paths)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestController_SubmitCreates(t *testing.T) {
	repo := &MockRepository[*models.Driver]{res: models.DriverResource}
	nav := &recorder{}
	log, _ := test.NewNullLogger()
	c := NewController[*models.Driver](repo, validDriverForm(), nav, log)

	saved := &models.Driver{Base: models.Base{ID: "d-1"}, FirstName: "Mario"}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Driver) bool {
		return d.FiscalCode == "RSSMRA80A01F205X" && d.ID == "" && d.Status == models.DriverActive
	})).Return(saved, nil).Once()

	assert.Equal(t, "Nuovo Autista", c.Title())
	assert.Equal(t, "Crea Autista", c.SubmitLabel())
	got, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Same(t, saved, got)
	assert.Equal(t, []string{"/drivers"}, nav.paths)
	assert.False(t, c.Saving())
	repo.AssertExpectations(t)
}

func TestController_SubmitFailureResetsSaving(t *testing.T) {
	repo := &MockRepository[*models.Driver]{res: models.DriverResource}
	nav := &recorder{}
	log, hook := test.NewNullLogger()
	c := NewController[*models.Driver](repo, validDriverForm(), nav, log)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("500")).Once()

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
	assert.False(t, c.Saving())
	assert.Empty(t, nav.paths)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Failed to save form", hook.LastEntry().Message)
}

func TestController_LoadAndUpdate(t *testing.T) {
	repo := &MockRepository[*models.Driver]{res: models.DriverResource}
	nav := &recorder{}
	log, _ := test.NewNullLogger()
	c := NewController[*models.Driver](repo, NewDriverForm(), nav, log)

	existing := &models.Driver{
		Base:          models.Base{ID: "d-1", CreatedAt: fixedNow, UpdatedAt: fixedNow},
		FirstName:     "Mario",
		LastName:      "Rossi",
		FiscalCode:    "RSSMRA80A01F205X",
		Phone:         "3331234567",
		LicenseNumber: "MI1234567",
		LicenseExpiry: fixedNow.AddDate(0, 0, 10),
		CQCExpiry:     fixedNow.AddDate(1, 0, 0),
		HireDate:      fixedNow.AddDate(-1, 0, 0),
		Status:        models.DriverActive,
		Notes:         "preferisce tratte nord",
	}
	repo.On("GetByID", mock.Anything, "d-1").Return(existing, nil).Once()

	require.NoError(t, c.Load(context.Background(), "d-1"))
	assert.True(t, c.EditMode())
	assert.Equal(t, "Modifica Autista", c.Title())
	assert.Equal(t, "Salva Modifiche", c.SubmitLabel())

	form := c.Form().(*DriverForm)
	assert.Equal(t, "Mario", form.FirstName)
	assert.True(t, form.LicenseExpiringSoon(fixedNow))

	form.Status = models.DriverOnLeave
	form.Notes = ""
	repo.On("Update", mock.Anything, "d-1", mock.MatchedBy(func(p models.Patch) bool {
		notes, hasNotes := p["notes"]
		return p["status"] == "on_leave" && hasNotes && notes == nil && p["id"] == nil
	})).Return(existing, nil).Once()

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/drivers"}, nav.paths)
	repo.AssertExpectations(t)
}

func TestController_LoadFailureNavigatesToList(t *testing.T) {
	repo := &MockRepository[*models.Vehicle]{res: models.VehicleResource}
	nav := &recorder{}
	log, _ := test.NewNullLogger()
	c := NewController[*models.Vehicle](repo, NewVehicleForm(nil), nav, log)

	repo.On("GetByID", mock.Anything, "v-404").Return(nil, errors.New("not found")).Once()

	err := c.Load(context.Background(), "v-404")
	require.Error(t, err)
	assert.Equal(t, []string{"/vehicles"}, nav.paths)
	assert.False(t, c.EditMode())
	assert.False(t, c.Loading())
}

func TestController_Reset(t *testing.T) {
	repo := &MockRepository[*models.Client]{res: models.ClientResource}
	log, _ := test.NewNullLogger()
	c := NewController[*models.Client](repo, NewClientForm(), NavigatorFunc(func(string) {}), log)

	form := c.Form().(*ClientForm)
	form.CompanyName = "ACME"
	c.Touch()
	c.Reset()

	assert.False(t, c.Touched())
	assert.Empty(t, form.CompanyName)
	assert.Equal(t, "Italia", form.Country)
	assert.True(t, form.IsActive)
}
