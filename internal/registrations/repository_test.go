package registrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stem-workshop/certificates/internal/models"
)

var registrationCols = []string{"id", "name", "employee_number", "workshop_title", "date", "funnel_type", "description", "submitted_at", "ip_address"}

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	reg := &models.Registration{
		Name: "Alice", EmployeeNumber: "E1", WorkshopTitle: "Robotics 101", Date: date,
		FunnelType: models.FunnelEngagement, Description: "intro", SubmittedAt: at, IPAddress: "10.0.0.1",
	}

	mock.ExpectQuery(`INSERT INTO workshops`).
		WithArgs("Alice", "E1", "Robotics 101", date, "Engagement", "intro", at, "10.0.0.1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	require.NoError(t, NewRepository(mock).Create(context.Background(), reg))
	assert.Equal(t, id, reg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM workshops WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(registrationCols).
			AddRow(id, "Alice", "E1", "Robotics 101", date, "Engagement", "intro", at, "10.0.0.1"))

	reg, err := NewRepository(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, reg.ID)
	assert.Equal(t, models.FunnelEngagement, reg.FunnelType)
	assert.Equal(t, date, reg.Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM workshops WHERE id`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err = NewRepository(mock).GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}

func TestRepositoryList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer, older := uuid.New(), uuid.New()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ORDER BY submitted_at DESC`).
		WillReturnRows(pgxmock.NewRows(registrationCols).
			AddRow(newer, "B", "E2", "Soldering", date, "Conversion", "b", date.Add(2*time.Hour), "").
			AddRow(older, "A", "E1", "Robotics 101", date, "Awareness", "a", date.Add(time.Hour), ""))

	list, err := NewRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer, list[0].ID)
	assert.Equal(t, models.FunnelAwareness, list[1].FunnelType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM workshops`).WillReturnRows(pgxmock.NewRows(registrationCols))

	list, err := NewRepository(mock).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
