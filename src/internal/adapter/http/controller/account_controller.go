package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/api-sage/ledger-replay/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-replay/src/internal/commons"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/gorilla/mux"
)

// AccountReader is the read side of the ledger store.
type AccountReader interface {
	Get(clientID domain.ClientID) (domain.Account, bool)
	Snapshot() []domain.Account
}

// AccountController exposes live balances while a replay is running.
type AccountController struct {
	accounts AccountReader
}

func NewAccountController(accounts AccountReader) *AccountController {
	return &AccountController{accounts: accounts}
}

func (c *AccountController) RegisterRoutes(r *mux.Router, authMiddleware mux.MiddlewareFunc) {
	sub := r.PathPrefix("/accounts").Subrouter()
	if authMiddleware != nil {
		sub.Use(authMiddleware)
	}
	sub.HandleFunc("", c.listAccounts).Methods(http.MethodGet)
	sub.HandleFunc("/{client}", c.getAccount).Methods(http.MethodGet)
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	accounts := models.NewAccountsResponse(c.accounts.Snapshot())
	response := commons.ListResponse("accounts retrieved", accounts)

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, fmt.Sprintf("%d accounts", len(accounts)), start)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	raw := mux.Vars(r)["client"]
	clientID, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid client id", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	account, ok := c.accounts.Get(domain.ClientID(clientID))
	if !ok {
		response := commons.ErrorResponse[models.AccountResponse](domain.ErrAccountNotFound.Error())
		writeJSON(w, http.StatusNotFound, response)
		logResponse(r, http.StatusNotFound, response, start)
		return
	}

	response := commons.SuccessResponse("account retrieved", models.NewAccountResponse(account))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
