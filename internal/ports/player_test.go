package ports_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func noopMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r)
	}
}

func newAllowedOrigins(t *testing.T) *ports.DomainSuffixes {
	t.Helper()
	allowedOrigins, err := ports.NewDomainSuffixes("timba.gg")
	require.NoError(t, err)
	return allowedOrigins
}

func newPlayerRequest(method, playerID, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/v1/players/"+playerID+path, reader)
	req.SetPathValue("playerID", playerID)
	return req
}

func testView(playerID string) app.PlayerView {
	rules := domain.DefaultRules()
	state := rules.NewPlayerState()
	state.Energy = 42
	state.Balance = 60
	state.PeakBalance = 1200
	state.UnlockedAchievements = domain.NewAchievementSet("rookie")

	return app.PlayerView{
		PlayerID:     playerID,
		State:        state,
		LastUpdate:   time.UnixMilli(1_700_000_000_000),
		MaxEnergy:    rules.MaxEnergy(state.Upgrades),
		ClickValue:   rules.ClickValue(state.Upgrades),
		Shop:         rules.Shop(state),
		Achievements: rules.AchievementProgress(state.PeakBalance, state.UnlockedAchievements),
	}
}

func TestMakeGetPlayerHandler(t *testing.T) {
	t.Parallel()

	makeHandler := func(getPlayer app.GetPlayer) http.HandlerFunc {
		return ports.MakeGetPlayerHandler(getPlayer, newAllowedOrigins(t), testLogger, noopMiddleware)
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := makeHandler(func(ctx context.Context, playerID string) (app.PlayerView, error) {
			called = true
			require.Equal(t, "player-1", playerID)
			return testView(playerID), nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("GET", "player-1", "", ""))

		require.True(t, called)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.JSONEq(t, `{
			"success": true,
			"player": {
				"playerId": "player-1",
				"energy": 42,
				"maxEnergy": 100,
				"balance": 60,
				"peakBalance": 1200,
				"clickValue": 1,
				"upgrades": {"multitap": 0, "energyTank": 0},
				"achievements": ["rookie"],
				"lastUpdate": 1700000000000,
				"shop": [
					{"id": "multitap", "name": "Multitap", "description": "Increases Timbitas per click (+1)", "kind": "stackable", "effect": "clickValue", "basePrice": 50, "priceGrowth": 2, "effectPerLevel": 1, "level": 0, "cost": 50, "canAfford": true},
					{"id": "energyTank", "name": "Energy Tank", "description": "Increases Max Energy (+100)", "kind": "stackable", "effect": "maxEnergy", "basePrice": 100, "priceGrowth": 1.5, "effectPerLevel": 100, "level": 0, "cost": 100, "canAfford": false},
					{"id": "fullRefill", "name": "Full Refill", "description": "Instantly restores full energy", "kind": "consumable", "effect": "fullRefill", "basePrice": 200, "level": 0, "cost": 200, "canAfford": false}
				],
				"trophies": [
					{"id": "rookie", "title": "ROOKIE ROLLER", "description": "Reach 1,000 Timbitas", "threshold": 1000, "unlocked": true, "progress": 1},
					{"id": "highstakes", "title": "HIGH STAKES", "description": "Reach 10,000 Timbitas", "threshold": 10000, "unlocked": false, "progress": 0.12},
					{"id": "boss", "title": "CASINO BOSS", "description": "Reach 50,000 Timbitas", "threshold": 50000, "unlocked": false, "progress": 0.024},
					{"id": "god", "title": "TIMBA GOD", "description": "Reach 100,000 Timbitas", "threshold": 100000, "unlocked": false, "progress": 0.012}
				]
			}
		}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string) (app.PlayerView, error) {
			return app.PlayerView{}, domain.ErrSaveNotFound
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("GET", "player-1", "", ""))

		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"success":false,"cause":"not found"}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string) (app.PlayerView, error) {
			return app.PlayerView{}, assert.AnError
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("GET", "player-1", "", ""))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"success":false,"cause":"internal server error"}`, w.Body.String())
	})

	t.Run("invalid player id", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string) (app.PlayerView, error) {
			t.Fatal("should not be called")
			return app.PlayerView{}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("GET", "player.1", "", ""))

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"success":false,"cause":"invalid player id"}`, w.Body.String())
	})

	t.Run("player id is trimmed", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := makeHandler(func(ctx context.Context, playerID string) (app.PlayerView, error) {
			called = true
			require.Equal(t, "player-1", playerID)
			return testView(playerID), nil
		})

		req := httptest.NewRequest("GET", "/v1/players/player-1", nil)
		req.SetPathValue("playerID", " player-1 ")
		w := httptest.NewRecorder()
		handler(w, req)

		require.True(t, called)
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMakeCreatePlayerHandler(t *testing.T) {
	t.Parallel()

	handler := ports.MakeCreatePlayerHandler(
		func(ctx context.Context) (app.PlayerView, error) {
			return testView("new-guest"), nil
		},
		newAllowedOrigins(t),
		testLogger,
		noopMiddleware,
	)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("POST", "/v1/players", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"playerId":"new-guest"`)
	require.Contains(t, w.Body.String(), `"success":true`)
}

func TestMakeResumeHandler(t *testing.T) {
	t.Parallel()

	called := false
	handler := ports.MakeResumeHandler(
		func(ctx context.Context, playerID string) (app.PlayerView, error) {
			called = true
			return testView(playerID), nil
		},
		newAllowedOrigins(t),
		testLogger,
		noopMiddleware,
	)

	w := httptest.NewRecorder()
	handler(w, newPlayerRequest("POST", "player-1", "/resume", ""))

	require.True(t, called)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"energy":42`)
}

func TestMakeTapHandler(t *testing.T) {
	t.Parallel()

	makeHandler := func(tap app.Tap) http.HandlerFunc {
		return ports.MakeTapHandler(tap, newAllowedOrigins(t), testLogger, noopMiddleware)
	}

	acceptAll := func(t *testing.T, expectedTaps int) (app.Tap, *bool) {
		called := false
		return func(ctx context.Context, playerID string, taps int) (app.TapResult, error) {
			called = true
			require.Equal(t, "player-1", playerID)
			require.Equal(t, expectedTaps, taps)
			return app.TapResult{
				Requested:     taps,
				Accepted:      taps,
				NewlyUnlocked: []domain.AchievementDefinition{},
				View:          testView(playerID),
			}, nil
		}, &called
	}

	t.Run("without body taps once", func(t *testing.T) {
		t.Parallel()

		tap, called := acceptAll(t, 1)
		w := httptest.NewRecorder()
		makeHandler(tap)(w, newPlayerRequest("POST", "player-1", "/tap", ""))

		require.True(t, *called)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"success":true,"declined":false,"requested":1,"accepted":1,"unlocked":[]`)
	})

	t.Run("batch", func(t *testing.T) {
		t.Parallel()

		tap, called := acceptAll(t, 25)
		w := httptest.NewRecorder()
		makeHandler(tap)(w, newPlayerRequest("POST", "player-1", "/tap", `{"taps": 25}`))

		require.True(t, *called)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"requested":25,"accepted":25`)
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string, taps int) (app.TapResult, error) {
			return app.TapResult{
				Requested:     5,
				Accepted:      2,
				Reason:        domain.DeclineInsufficientEnergy,
				NewlyUnlocked: []domain.AchievementDefinition{},
				View:          testView(playerID),
			}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("POST", "player-1", "/tap", `{"taps": 5}`))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"success":false,"declined":true,"reason":"insufficient_energy","requested":5,"accepted":2`)
	})

	t.Run("unlocked achievements are listed", func(t *testing.T) {
		t.Parallel()

		rookie := domain.DefaultRules().Achievements()[0]
		handler := makeHandler(func(ctx context.Context, playerID string, taps int) (app.TapResult, error) {
			return app.TapResult{
				Requested:     1,
				Accepted:      1,
				NewlyUnlocked: []domain.AchievementDefinition{rookie},
				View:          testView(playerID),
			}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("POST", "player-1", "/tap", ""))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"unlocked":[{"id":"rookie","title":"ROOKIE ROLLER","description":"Reach 1,000 Timbitas","threshold":1000}]`)
	})

	for _, body := range []string{
		`{"taps": 0}`,
		`{"taps": 101}`,
		`{"taps": 1.5}`,
		`{"taps": "3"}`,
		`{"taps": 3, "extra": true}`,
		`{"taps": 3}{"taps": 3}`,
		`[1]`,
		`{"taps":`,
	} {
		t.Run("invalid body "+body, func(t *testing.T) {
			t.Parallel()

			handler := makeHandler(func(ctx context.Context, playerID string, taps int) (app.TapResult, error) {
				t.Fatal("should not be called")
				return app.TapResult{}, nil
			})

			w := httptest.NewRecorder()
			handler(w, newPlayerRequest("POST", "player-1", "/tap", body))

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.JSONEq(t, `{"success":false,"cause":"invalid request body"}`, w.Body.String())
		})
	}

	t.Run("invalid tap count from use case", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string, taps int) (app.TapResult, error) {
			return app.TapResult{}, domain.ErrInvalidTapCount
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("POST", "player-1", "/tap", ""))

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"success":false,"cause":"invalid tap count"}`, w.Body.String())
	})
}

func TestMakePurchaseHandler(t *testing.T) {
	t.Parallel()

	makeHandler := func(purchase app.Purchase) http.HandlerFunc {
		return ports.MakePurchaseHandler(purchase, newAllowedOrigins(t), testLogger, noopMiddleware)
	}

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := makeHandler(func(ctx context.Context, playerID string, upgradeID domain.UpgradeID) (app.PurchaseResult, error) {
			called = true
			require.Equal(t, domain.UpgradeMultitap, upgradeID)
			return app.PurchaseResult{Accepted: true, Price: 50, View: testView(playerID)}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("POST", "player-1", "/purchase", `{"upgradeId":"multitap"}`))

		require.True(t, called)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"success":true,"declined":false,"price":50`)
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string, upgradeID domain.UpgradeID) (app.PurchaseResult, error) {
			return app.PurchaseResult{
				Accepted: false,
				Reason:   domain.DeclineUnknownUpgrade,
				Price:    domain.UnaffordablePrice,
				View:     testView(playerID),
			}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("POST", "player-1", "/purchase", `{"upgradeId":"goldenTap"}`))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"success":false,"declined":true,"reason":"unknown_upgrade","price":999999999`)
	})

	for _, body := range []string{
		``,
		`{}`,
		`{"upgradeId":""}`,
		`{"upgradeId":5}`,
	} {
		t.Run("invalid body '"+body+"'", func(t *testing.T) {
			t.Parallel()

			handler := makeHandler(func(ctx context.Context, playerID string, upgradeID domain.UpgradeID) (app.PurchaseResult, error) {
				t.Fatal("should not be called")
				return app.PurchaseResult{}, nil
			})

			w := httptest.NewRecorder()
			handler(w, newPlayerRequest("POST", "player-1", "/purchase", body))

			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMakeCheckAchievementsHandler(t *testing.T) {
	t.Parallel()

	rules := domain.DefaultRules()
	handler := ports.MakeCheckAchievementsHandler(
		func(ctx context.Context, playerID string) (app.AchievementResult, error) {
			return app.AchievementResult{
				NewlyUnlocked: rules.Achievements()[:2],
				View:          testView(playerID),
			}, nil
		},
		newAllowedOrigins(t),
		testLogger,
		noopMiddleware,
	)

	w := httptest.NewRecorder()
	handler(w, newPlayerRequest("POST", "player-1", "/achievements", ""))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"unlocked":[{"id":"rookie"`)
	require.Contains(t, w.Body.String(), `{"id":"highstakes","title":"HIGH STAKES","description":"Reach 10,000 Timbitas","threshold":10000}]`)
}

func TestMakeImportSaveHandler(t *testing.T) {
	t.Parallel()

	makeHandler := func(importSave app.ImportSave) http.HandlerFunc {
		return ports.MakeImportSaveHandler(importSave, domain.DefaultRules(), newAllowedOrigins(t), testLogger, noopMiddleware)
	}

	t.Run("blob is converted", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := makeHandler(func(ctx context.Context, playerID string, incoming domain.Save) (app.ImportResult, error) {
			called = true
			require.Equal(t, "player-1", playerID)
			require.Equal(t, domain.Save{
				PlayerID: "player-1",
				State: domain.PlayerState{
					Energy:               80,
					Balance:              1500,
					PeakBalance:          2000,
					Upgrades:             domain.Levels{domain.UpgradeMultitap: 2, domain.UpgradeEnergyTank: 0},
					UnlockedAchievements: domain.NewAchievementSet("rookie"),
				},
				LastUpdate: time.UnixMilli(1_700_000_000_000),
			}, incoming)
			return app.ImportResult{Imported: true, View: testView(playerID)}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("PUT", "player-1", "/save", `{
			"balance": 1500,
			"maxBalance": 2000,
			"energy": 80,
			"upgrades": {"multitap": 2},
			"achievements": ["rookie"],
			"lastSaveTime": 1700000000000
		}`))

		require.True(t, called)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"success":true,"imported":true`)
	})

	t.Run("missing energy and save time", func(t *testing.T) {
		t.Parallel()

		handler := makeHandler(func(ctx context.Context, playerID string, incoming domain.Save) (app.ImportResult, error) {
			require.Equal(t, int64(100), incoming.State.Energy)
			require.True(t, incoming.LastUpdate.IsZero())
			return app.ImportResult{Imported: false, View: testView(playerID)}, nil
		})

		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("PUT", "player-1", "/save", `{"balance": 10}`))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"success":true,"imported":false`)
	})

	for _, body := range []string{
		``,
		`{}`,
		`{"balance": "10"}`,
		`{"balance": 10, "upgrades": {"multitap": "2"}}`,
		`{"balance": 10, "achievements": [1]}`,
		`{"balance": 10, "lastSaveTime": -1}`,
		`{"balance": 10, "cheat": true}`,
		`{"balance": 10, "upgrades": {"energyTank": 100000000000000000}}`,
		`{"balance": 10, "upgrades": {"multitap": 10001}}`,
		`{"balance": 10, "upgrades": {"multitap": -1}}`,
	} {
		t.Run("invalid blob '"+body+"'", func(t *testing.T) {
			t.Parallel()

			handler := makeHandler(func(ctx context.Context, playerID string, incoming domain.Save) (app.ImportResult, error) {
				t.Fatal("should not be called")
				return app.ImportResult{}, nil
			})

			w := httptest.NewRecorder()
			handler(w, newPlayerRequest("PUT", "player-1", "/save", body))

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.JSONEq(t, `{"success":false,"cause":"invalid save blob"}`, w.Body.String())
		})
	}
}

func TestMakeGetCatalogHandler(t *testing.T) {
	t.Parallel()

	handler := ports.MakeGetCatalogHandler(
		app.BuildGetCatalog(domain.DefaultRules()),
		newAllowedOrigins(t),
		testLogger,
		noopMiddleware,
	)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/v1/catalog", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"constants":{"baseMaxEnergy":100,"energyCostPerTap":1,"regenPerSecond":1,"baseClickValue":1}`)
	require.Contains(t, w.Body.String(), `{"id":"god","title":"TIMBA GOD","description":"Reach 100,000 Timbitas","threshold":100000}`)
}

func TestRateLimitResponse(t *testing.T) {
	t.Parallel()

	handler := ports.MakeImportSaveHandler(
		func(ctx context.Context, playerID string, incoming domain.Save) (app.ImportResult, error) {
			return app.ImportResult{Imported: true, View: testView(playerID)}, nil
		},
		domain.DefaultRules(),
		newAllowedOrigins(t),
		testLogger,
		noopMiddleware,
	)

	codes := map[int]int{}
	for range 20 {
		w := httptest.NewRecorder()
		handler(w, newPlayerRequest("PUT", "player-1", "/save", `{"balance": 10}`))
		codes[w.Code]++
		if w.Code == http.StatusTooManyRequests {
			require.JSONEq(t, `{"success":false,"cause":"rate limit exceeded"}`, w.Body.String())
			require.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}

	// Burst of 10, refilling at one per second
	require.Equal(t, 20, codes[http.StatusOK]+codes[http.StatusTooManyRequests])
	require.GreaterOrEqual(t, codes[http.StatusTooManyRequests], 9)
}
