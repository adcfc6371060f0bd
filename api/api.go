package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/contextutil"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/google/uuid"
)

type Api struct {
	Auth    *auth.Authenticator
	Tokens  *auth.TokenIssuer
	Budgets *budget.BudgetStore
	Ledger  *ledger.Ledger
}

func NewApi(authenticator *auth.Authenticator, tokens *auth.TokenIssuer, budgets *budget.BudgetStore, l *ledger.Ledger) *Api {
	return &Api{
		Auth:    authenticator,
		Tokens:  tokens,
		Budgets: budgets,
		Ledger:  l,
	}
}

// Register mounts every endpoint on mux.
func (api *Api) Register(mux *http.ServeMux) {
	// USER ENDPOINTS.
	mux.HandleFunc("POST /api/register", iz.Bind(api.SaveUserHandler)) // Create User
	mux.HandleFunc("POST /api/login", iz.Bind(api.LoginUserHandler))    // Login User
	mux.HandleFunc("GET /api/logout", iz.Bind(api.LogoutUserHandler))   // Logout User

	// BUDGET ENDPOINTS.
	mux.HandleFunc("PUT /api/budget", iz.Bind(api.SetBudgetHandler)) // Set monthly budget
	mux.HandleFunc("GET /api/budget", iz.Bind(api.GetBudgetHandler)) // Get monthly budget

	// TRANSACTION ENDPOINTS.
	mux.HandleFunc("POST /api/transaction", iz.Bind(api.SaveTransactionHandler))                // Create Transaction
	mux.HandleFunc("GET /api/transaction", iz.Bind(api.GetTransactionsHandler))                 // List Transactions
	mux.HandleFunc("PUT /api/transaction/{id}/image", iz.Bind(api.SetTransactionImageHandler)) // Attach receipt URL
	mux.HandleFunc("DELETE /api/transaction/{id}", iz.Bind(api.DeleteTransactionHandler))      // Delete Transaction

	// SUMMARY ENDPOINTS.
	mux.HandleFunc("GET /api/summary", iz.Bind(api.GetSummaryHandler)) // Home screen figures
}

func requestContext(r *iz.Request) context.Context {
	return contextutil.WithTraceID(r.Context(), uuid.New().String())
}

// authorize resolves the Bearer token to a user id. A non-nil Responder means
// the request must be answered with it.
func (api *Api) authorize(r *iz.Request) (context.Context, string, iz.Responder) {
	ctx := requestContext(r)

	header := r.Header.Get("Authorization")
	if header == "" {
		return ctx, "", errorResponse(ctx, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeAuth,
			Message: "Authorization header is required.",
		})
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	userId, err := api.Tokens.Parse(token)
	if err != nil {
		return ctx, "", errorResponse(ctx, err)
	}
	return contextutil.WithUserID(ctx, userId), userId, nil
}

func decodeBody(r *iz.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: "Invalid request body.",
		}
	}
	return nil
}

func errorResponse(ctx context.Context, err error) iz.Responder {
	status := httpStatusFromError(err)
	if status >= http.StatusInternalServerError {
		userId, ok := contextutil.UserIDFromContext(ctx)
		if !ok {
			userId = "anonymous"
		}
		logging.Logger.Errorf("[TraceID=%s] [UserID=%s] | request failed: %v", contextutil.TraceIDFromContext(ctx), userId, err)
	}
	return iz.Respond().Status(status).JSON(appErrors.ErrorResponse{
		Code:    appErrors.CodeOf(err),
		Message: appErrors.MessageOf(err),
	})
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, appErrors.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, appErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrAuth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (api *Api) SaveUserHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	var newUserReq SaveUserRequest
	if err := decodeBody(r, &newUserReq); err != nil {
		return errorResponse(ctx, err)
	}

	userId, err := api.Auth.Register(ctx, auth.NewUser{
		UserName:      newUserReq.UserName,
		PasswordPlain: newUserReq.Password,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	token, err := api.Tokens.Issue(userId)
	if err != nil {
		return errorResponse(ctx, err)
	}

	resp := UserCreatedResponse{
		Message: "Registration Completed",
		UserID:  userId,
		Token:   token,
	}
	return iz.Respond().Status(http.StatusCreated).JSON(resp)
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	var loginRequest UserLoginRequest
	if err := decodeBody(r, &loginRequest); err != nil {
		return errorResponse(ctx, err)
	}

	user, err := api.Auth.Verify(ctx, auth.UserCredentialsPure{
		UserName:      loginRequest.UserName,
		PasswordPlain: loginRequest.Password,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	token, err := api.Tokens.Issue(user.ID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	response := LoginResponse{
		Message: "You've logged in successfully!",
		Token:   token,
	}
	return iz.Respond().Status(http.StatusOK).JSON(response)
}

// LogoutUserHandler only checks the token, clients drop it themselves.
func (api *Api) LogoutUserHandler(r *iz.Request) iz.Responder {
	_, _, denied := api.authorize(r)
	if denied != nil {
		return denied
	}
	return iz.Respond().Status(http.StatusOK).JSON(MessageResponse{Message: "Logout successful."})
}

func (api *Api) SetBudgetHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var req SetBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		return errorResponse(ctx, err)
	}

	if err := api.Budgets.SetBudget(ctx, userId, req.Amount); err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(MessageResponse{Message: "Budget saved."})
}

func (api *Api) GetBudgetHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	b, ok, err := api.Budgets.GetBudget(ctx, userId)
	if err != nil {
		return errorResponse(ctx, err)
	}

	resp := BudgetResponse{IsSet: ok}
	if ok {
		amount := b.Amount
		resp.Amount = &amount
	}
	return iz.Respond().Status(http.StatusOK).JSON(resp)
}

func (api *Api) SaveTransactionHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var newTransactionReq CreateTransactionRequest
	if err := decodeBody(r, &newTransactionReq); err != nil {
		return errorResponse(ctx, err)
	}

	amount, err := ledger.ParseAmount(newTransactionReq.Amount)
	if err != nil {
		return errorResponse(ctx, err)
	}

	id, err := api.Ledger.Append(ctx, userId, newTransactionReq.Name, amount)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(TransactionCreatedResponse{
		Message: "transaction successfully created",
		ID:      id,
	})
}

func (api *Api) GetTransactionsHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	transactions, err := api.Ledger.List(ctx, userId)
	if err != nil {
		return errorResponse(ctx, err)
	}

	resp := TransactionListResponse{
		Transactions: make([]TransactionItem, 0, len(transactions)),
		TotalSpend:   ledger.TotalSpend(transactions),
	}
	for _, t := range transactions {
		resp.Transactions = append(resp.Transactions, TransactionToHttp(t))
	}
	return iz.Respond().Status(http.StatusOK).JSON(resp)
}

func (api *Api) SetTransactionImageHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var req SetImageRequest
	if err := decodeBody(r, &req); err != nil {
		return errorResponse(ctx, err)
	}

	tId := r.PathValue("id")
	if err := api.Ledger.SetImage(ctx, userId, tId, req.URL); err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(MessageResponse{Message: "Receipt attached."})
}

func (api *Api) DeleteTransactionHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	tId := r.PathValue("id")
	if err := api.Ledger.Remove(ctx, userId, tId); err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(MessageResponse{Message: "transaction deleted successfully"})
}

func (api *Api) GetSummaryHandler(r *iz.Request) iz.Responder {
	ctx, userId, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	summary, err := api.Ledger.Summary(ctx, userId, api.Budgets)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(SummaryToHttp(summary))
}
