package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStorage keeps the document store in SQLite or Postgres.
type GormStorage struct {
	db          *gorm.DB
	storageType string
}

// OpenSQLite opens (and creates if needed) the database file at path.
// ":memory:" gives a private in-process database.
func OpenSQLite(path string) (*GormStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	s, err := openGorm(sqlite.Open(path), "sqlite")
	if err != nil {
		return nil, err
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// one writer keeps ":memory:" on a single connection and avoids SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	return s, nil
}

func OpenPostgres(dsn string) (*GormStorage, error) {
	return openGorm(postgres.Open(dsn), "postgres")
}

func openGorm(dialector gorm.Dialector, storageType string) (*GormStorage, error) {
	gormLogger := logger.Default.LogMode(logger.Silent)
	if logging.Logger.IsLevelEnabled(logrus.DebugLevel) {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", storageType, err)
	}

	if err := db.AutoMigrate(&dbUser{}, &dbBudget{}, &dbTransaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logging.Logger.Infof("Connected to %s database successfully", storageType)
	return &GormStorage{db: db, storageType: storageType}, nil
}

func (g *GormStorage) GetStorageType() string {
	return g.storageType
}

func (g *GormStorage) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormStorage) SaveUser(ctx context.Context, user auth.User) error {
	row := dbUser{
		ID:        user.ID,
		UserName:  user.UserName,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeConflict,
				Message: fmt.Sprintf("This '%s' username already taken.", user.UserName),
			}
		}
		return unavailable(ctx, "Storage.SaveUser()", err, "Registration failed, try again later.")
	}
	return nil
}

func (g *GormStorage) FindUserByUserName(ctx context.Context, username string) (auth.User, error) {
	var row dbUser
	err := g.db.WithContext(ctx).Where("username = ?", username).Order("created_at").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeNotFound,
				Message: "User not found.",
			}
		}
		return auth.User{}, unavailable(ctx, "Storage.FindUserByUserName()", err, "Failed to find user, try again later.")
	}
	return auth.User{
		ID:        row.ID,
		UserName:  row.UserName,
		Password:  row.Password,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (g *GormStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&dbUser{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, unavailable(ctx, "Storage.IsUserExists()", err, "Failed to check username, try again later.")
	}
	return count > 0, nil
}

func (g *GormStorage) SaveBudget(ctx context.Context, b budget.Budget) error {
	row := dbBudget{
		UserID:    b.UserID,
		Amount:    b.Amount,
		UpdatedAt: b.UpdatedAt,
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return unavailable(ctx, "Storage.SaveBudget()", err, "Failed to save budget, try again later.")
	}
	return nil
}

func (g *GormStorage) GetBudget(ctx context.Context, userId string) (budget.Budget, error) {
	var row dbBudget
	err := g.db.WithContext(ctx).Where("user_id = ?", userId).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return budget.Budget{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeNotFound,
				Message: "Budget not set.",
			}
		}
		return budget.Budget{}, unavailable(ctx, "Storage.GetBudget()", err, "Failed to get budget, try again later.")
	}
	return budget.Budget{
		UserID:    row.UserID,
		Amount:    row.Amount,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (g *GormStorage) SaveTransaction(ctx context.Context, userId string, r ledger.Record) error {
	row := dbTransaction{
		ID:        r.ID,
		UserID:    userId,
		Name:      r.Name,
		Amount:    r.Amount,
		Image:     r.Image,
		CreatedAt: r.CreatedAt,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return unavailable(ctx, "Storage.SaveTransaction()", err, "Failed to save transaction, try again later.")
	}
	return nil
}

func (g *GormStorage) GetTransactions(ctx context.Context, userId string) ([]ledger.Record, error) {
	var rows []dbTransaction
	if err := g.db.WithContext(ctx).Where("user_id = ?", userId).Order("seq").Find(&rows).Error; err != nil {
		return nil, unavailable(ctx, "Storage.GetTransactions()", err, "Failed to get transactions, try again later.")
	}

	records := make([]ledger.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, ledger.Record{
			ID:        row.ID,
			Name:      row.Name,
			Amount:    row.Amount,
			Image:     row.Image,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

func (g *GormStorage) UpdateTransactionImage(ctx context.Context, userId string, transactionId string, url string) error {
	res := g.db.WithContext(ctx).Model(&dbTransaction{}).
		Where("id = ? AND user_id = ?", transactionId, userId).
		Update("image", url)
	if res.Error != nil {
		return unavailable(ctx, "Storage.UpdateTransactionImage()", res.Error, "Failed to update receipt, try again later.")
	}
	if res.RowsAffected == 0 {
		return transactionNotFound()
	}
	return nil
}

func (g *GormStorage) DeleteTransaction(ctx context.Context, userId string, transactionId string) error {
	res := g.db.WithContext(ctx).Where("id = ? AND user_id = ?", transactionId, userId).Delete(&dbTransaction{})
	if res.Error != nil {
		return unavailable(ctx, "Storage.DeleteTransaction()", res.Error, "Failed to delete transaction, try again later.")
	}
	if res.RowsAffected == 0 {
		return transactionNotFound()
	}
	return nil
}
