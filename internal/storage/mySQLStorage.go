package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/config"
	"github.com/fatali-fataliyev/budget_planner/internal/contextutil"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/go-sql-driver/mysql"
)

const (
	pingAttempts = 15
	pingInterval = 3 * time.Second
)

// --- INIT START --- //

// mysqlDSN builds the connection string for dbname. An empty dbname gives the
// server level handle used to create the database.
func mysqlDSN(cfg config.MySQLConfig, dbname string) (string, error) {
	var c *mysql.Config
	if cfg.FullDSN != "" {
		parsed, err := mysql.ParseDSN(cfg.FullDSN)
		if err != nil {
			return "", fmt.Errorf("invalid FULL_DSN: %w", err)
		}
		c = parsed
	} else {
		c = mysql.NewConfig()
		c.User = cfg.User
		c.Passwd = cfg.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	}
	c.DBName = dbname
	c.ParseTime = true
	c.Loc = time.UTC
	c.ClientFoundRows = true
	return c.FormatDSN(), nil
}

func databaseName(cfg config.MySQLConfig) string {
	if cfg.FullDSN != "" {
		if parsed, err := mysql.ParseDSN(cfg.FullDSN); err == nil && parsed.DBName != "" {
			return parsed.DBName
		}
	}
	if cfg.Name == "" {
		return "budget_planner"
	}
	return cfg.Name
}

// InitMySQL waits for the server, creates the database if it is missing,
// applies migrations and returns a ready handle.
func InitMySQL(ctx context.Context, cfg config.MySQLConfig) (*sql.DB, error) {
	dbname := databaseName(cfg)

	adminDsn, err := mysqlDSN(cfg, "")
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %w", err)
	}
	defer adminDb.Close()

	if err := waitForServer(ctx, adminDb); err != nil {
		return nil, err
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRowContext(ctx, checkDbnameExistQuery, dbname).Scan(&dbnameExistence)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.ExecContext(ctx, createDbSql); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	finalDsn, err := mysqlDSN(cfg, dbname)
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Running migrations...")
	if err := runMigrations(finalDsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	logging.Logger.Info("Connected to database successfully")
	return db, nil
}

func waitForServer(ctx context.Context, db *sql.DB) error {
	for i := 0; i < pingAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/%d)", i+1, pingAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingInterval):
		}
	}
	return fmt.Errorf("database unreachable after multiple attempts")
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "mysql"
}

func (mySql *MySQLStorage) Close() error {
	return mySql.db.Close()
}

// unavailable logs the driver error with the request trace id and hides it
// behind a STORAGE UNAVAILABLE response.
func unavailable(ctx context.Context, where string, err error, message string) error {
	traceID := contextutil.TraceIDFromContext(ctx)
	userId, ok := contextutil.UserIDFromContext(ctx)
	if !ok {
		userId = "anonymous"
	}
	logging.Logger.Errorf("[TraceID=%s] [UserID=%s] | failed in %s | Error: %v", traceID, userId, where, err)
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrCodeStorageUnavailable,
		Message: message,
	}
}

func (mySql *MySQLStorage) SaveUser(ctx context.Context, user auth.User) error {
	query := "INSERT INTO users (id, username, password, created_at) VALUES (?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, user.ID, user.UserName, user.Password, user.CreatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeConflict,
				Message: fmt.Sprintf("This '%s' username already taken.", user.UserName),
			}
		}
		return unavailable(ctx, "Storage.SaveUser()", err, "Registration failed, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) FindUserByUserName(ctx context.Context, username string) (auth.User, error) {
	query := "SELECT id, username, password, created_at FROM users WHERE username = ? ORDER BY created_at LIMIT 1;"

	var user auth.User
	err := mySql.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.UserName, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeNotFound,
				Message: "User not found.",
			}
		}
		return auth.User{}, unavailable(ctx, "Storage.FindUserByUserName()", err, "Failed to find user, try again later.")
	}
	return user, nil
}

func (mySql *MySQLStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM users WHERE username = ?);"

	var exists bool
	if err := mySql.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, unavailable(ctx, "Storage.IsUserExists()", err, "Failed to check username, try again later.")
	}
	return exists, nil
}

func (mySql *MySQLStorage) SaveBudget(ctx context.Context, b budget.Budget) error {
	query := `INSERT INTO budgets (user_id, amount, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount), updated_at = VALUES(updated_at);`
	if _, err := mySql.db.ExecContext(ctx, query, b.UserID, b.Amount, b.UpdatedAt); err != nil {
		return unavailable(ctx, "Storage.SaveBudget()", err, "Failed to save budget, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) GetBudget(ctx context.Context, userId string) (budget.Budget, error) {
	query := "SELECT user_id, amount, updated_at FROM budgets WHERE user_id = ?;"

	var b budget.Budget
	err := mySql.db.QueryRowContext(ctx, query, userId).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.Budget{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeNotFound,
				Message: "Budget not set.",
			}
		}
		return budget.Budget{}, unavailable(ctx, "Storage.GetBudget()", err, "Failed to get budget, try again later.")
	}
	return b, nil
}

func (mySql *MySQLStorage) SaveTransaction(ctx context.Context, userId string, r ledger.Record) error {
	query := "INSERT INTO transactions (id, user_id, name, amount, image, created_at) VALUES (?, ?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, r.ID, userId, ptrToNull(r.Name), ptrToNull(r.Amount), ptrToNull(r.Image), r.CreatedAt)
	if err != nil {
		return unavailable(ctx, "Storage.SaveTransaction()", err, "Failed to save transaction, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) GetTransactions(ctx context.Context, userId string) ([]ledger.Record, error) {
	query := "SELECT id, name, amount, image, created_at FROM transactions WHERE user_id = ? ORDER BY seq;"

	rows, err := mySql.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, unavailable(ctx, "Storage.GetTransactions()", err, "Failed to get transactions, try again later.")
	}
	defer rows.Close()

	records := []ledger.Record{}
	for rows.Next() {
		var (
			r                   ledger.Record
			name, amount, image sql.NullString
		)
		if err := rows.Scan(&r.ID, &name, &amount, &image, &r.CreatedAt); err != nil {
			return nil, unavailable(ctx, "Storage.GetTransactions()", err, "Failed to get transactions, try again later.")
		}
		r.Name = nullToPtr(name)
		r.Amount = nullToPtr(amount)
		r.Image = nullToPtr(image)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(ctx, "Storage.GetTransactions()", err, "Failed to get transactions, try again later.")
	}
	return records, nil
}

func (mySql *MySQLStorage) UpdateTransactionImage(ctx context.Context, userId string, transactionId string, url string) error {
	query := "UPDATE transactions SET image = ? WHERE id = ? AND user_id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, url, transactionId, userId)
	if err != nil {
		return unavailable(ctx, "Storage.UpdateTransactionImage()", err, "Failed to update receipt, try again later.")
	}
	return requireAffected(ctx, res, "Storage.UpdateTransactionImage()")
}

func (mySql *MySQLStorage) DeleteTransaction(ctx context.Context, userId string, transactionId string) error {
	query := "DELETE FROM transactions WHERE id = ? AND user_id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, transactionId, userId)
	if err != nil {
		return unavailable(ctx, "Storage.DeleteTransaction()", err, "Failed to delete transaction, try again later.")
	}
	return requireAffected(ctx, res, "Storage.DeleteTransaction()")
}

// requireAffected turns a statement that matched no row into NOT FOUND.
func requireAffected(ctx context.Context, res sql.Result, where string) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return unavailable(ctx, where, err, "Failed to check transaction, try again later.")
	}
	if rowsAffected == 0 {
		return transactionNotFound()
	}
	return nil
}
