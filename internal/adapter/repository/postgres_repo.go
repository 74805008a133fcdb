package repository

import (
	"context"

	"github.com/Trizly-xyz/trizlySite/internal/common"
	"github.com/Trizly-xyz/trizlySite/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxRecent = 100

// PostgresRepo 实现了 port.RefreshLog 接口
type PostgresRepo struct {
	db *gorm.DB
}

// NewPostgresRepo 初始化数据库连接并自动迁移表结构
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	// 建 refresh_records 表
	if err := db.AutoMigrate(&domain.RefreshRecord{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return &PostgresRepo{db: db}, nil
}

// Record 追加一条刷新记录
func (r *PostgresRepo) Record(ctx context.Context, record *domain.RefreshRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存刷新记录失败", err)
	}
	return nil
}

// Recent 按开始时间倒序返回最近的刷新记录
func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]*domain.RefreshRecord, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}

	var records []*domain.RefreshRecord
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询刷新记录失败", err)
	}
	return records, nil
}

// Close 关闭底层连接池
func (r *PostgresRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
