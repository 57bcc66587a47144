package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
	"github.com/familyflow/familyflow-api/internal/service"
)

func setupWalletApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Subject{},
		&models.Assignment{},
		&models.WalletTransaction{},
		&models.Reward{},
		&models.RewardClaim{},
		&models.GroupReward{},
		&models.SubjectProgress{},
		&models.BadgeEarned{},
		&models.DailyActivity{},
	))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	walletService := service.NewWalletService(walletRepo, studentRepo, rewardRepo, validate, service.NopPublisher{}, logger)
	dashboardService := service.NewDashboardService(
		studentRepo, walletRepo,
		repository.NewProgressRepository(db), rewardRepo, repository.NewAssignmentRepository(db),
		nil, time.Minute, logger,
	)

	app := fiber.New()
	group := app.Group("/students")
	NewWalletHandler(walletService, dashboardService, logger).Register(group)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

type walletEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Balance        int          `json:"balance"`
		Allocations    map[uint]int `json:"allocations"`
		TotalAllocated int          `json:"total_allocated"`
	} `json:"data"`
}

func decodeWallet(t *testing.T, resp *http.Response) walletEnvelope {
	t.Helper()
	var envelope walletEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, resp.Body.Close())
	return envelope
}

func TestWalletAdjustEndpoint(t *testing.T) {
	app, db := setupWalletApp(t)
	student := models.Student{FamilyID: "fam-1", Name: "Mia", WalletBalance: 100}
	require.NoError(t, db.Create(&student).Error)

	resp := postJSON(t, app, fmt.Sprintf("/students/%d/wallet/adjust", student.ID), fiber.Map{
		"points": 40,
		"reason": "chores",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	envelope := decodeWallet(t, resp)
	require.True(t, envelope.Success)
	require.Equal(t, 140, envelope.Data.Balance)

	// Overdraw comes back as an unprocessable request, not a server error.
	resp = postJSON(t, app, fmt.Sprintf("/students/%d/wallet/adjust", student.ID), fiber.Map{
		"points": -500,
		"reason": "too much",
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, app, fmt.Sprintf("/students/%d/wallet/adjust", student.ID), fiber.Map{
		"points": 0,
		"reason": "nothing",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/students/999/wallet/adjust", fiber.Map{"points": 5, "reason": "ghost"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWalletRedeemEndpoint(t *testing.T) {
	app, db := setupWalletApp(t)
	student := models.Student{FamilyID: "fam-1", Name: "Mia", WalletBalance: 80}
	require.NoError(t, db.Create(&student).Error)
	reward := models.Reward{FamilyID: "fam-1", Name: "Lego set", PointCost: 50, Tier: models.TierBronze, IsActive: true}
	require.NoError(t, db.Create(&reward).Error)

	resp := postJSON(t, app, fmt.Sprintf("/students/%d/wallet/redeem/%d", student.ID, reward.ID), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	wallet := decodeWallet(t, getJSON(t, app, fmt.Sprintf("/students/%d/wallet", student.ID)))
	require.Equal(t, 30, wallet.Data.Balance)

	resp = postJSON(t, app, fmt.Sprintf("/students/%d/wallet/redeem/999", student.ID), nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, app, fmt.Sprintf("/students/%d/wallet/redeem/%d", student.ID, reward.ID), nil)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, "only 30 points left")
}

func TestWalletEndpointRejectsBadIdentifier(t *testing.T) {
	app, _ := setupWalletApp(t)
	resp := getJSON(t, app, "/students/abc/wallet")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
