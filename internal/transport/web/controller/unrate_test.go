package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mwhitworth/ratemill/internal/command"
	"github.com/mwhitworth/ratemill/internal/domain"
)

func TestUnrate_ServeHTTP(t *testing.T) {
	foodRef := domain.EntityRef{TypeTag: "food", ID: 1}

	cases := []struct {
		name         string
		method       string
		entityExists bool
		execErr      error
		skipCheck    bool
		skipExec     bool
		wantStatus   int
	}{
		{
			name:         "post_succeeds",
			method:       http.MethodPost,
			entityExists: true,
			wantStatus:   http.StatusFound,
		},
		{
			name:       "get_method_not_allowed",
			method:     http.MethodGet,
			skipCheck:  true,
			skipExec:   true,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "missing_entity",
			method:     http.MethodPost,
			skipExec:   true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:         "command_error",
			method:       http.MethodPost,
			entityExists: true,
			execErr:      errors.New("database error"),
			wantStatus:   http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entities := &mockEntityChecker{}
			if !tc.skipCheck {
				entities.On("EntityExists", mock.Anything, foodRef).
					Return(tc.entityExists, nil)
			}

			unrateCmd := &mockUnrateCommand{}
			if !tc.skipExec {
				unrateCmd.On("Execute", mock.Anything, command.UnrateEntityRequest{
					UserID: "user_a",
					Entity: foodRef,
				}).Return(command.Empty{}, tc.execErr)
			}

			ctrl := Unrate{
				Registry:  testRegistry(),
				Entities:  entities,
				UnrateCmd: unrateCmd,
			}

			req := httptest.NewRequest(tc.method, "/v1/unrate/food/1", nil)
			req = testContextWithUserID("user_a")(req)
			req = mux.SetURLVars(req, map[string]string{
				"type_tag":  "food",
				"entity_id": "1",
			})
			rec := httptest.NewRecorder()

			ctrl.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			entities.AssertExpectations(t)
			unrateCmd.AssertExpectations(t)
		})
	}
}
