package svc

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ProjectsTask/EasySwapListing/src/dao"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
)

func TestNewServerCtxDefaults(t *testing.T) {
	s := NewServerCtx(WithPageOptions(PageOptions{RenderWait: time.Second}))

	assert.NotNil(t, s.Pages)
	assert.Equal(t, time.Second, s.RenderWait)
	assert.Zero(t, s.ChainID())
	assert.Zero(t, s.ConnectedChainID())
	assert.Nil(t, s.Dao)

	p, sid := s.Pages.Visit(context.Background(), "", "")
	assert.NotEmpty(t, sid)
	assert.Equal(t, page.StateNotFound, p.State())
	s.Close()
}

func TestActionRecorder(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{SkipDefaultTransaction: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `listing_actions`")).
		WithArgs(int64(11155111), "3", "offer", "0xw", "0.05", "0xabc", page.RecordSuccess, "", int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := NewActionRecorder(dao.New(db, nil), 11155111)
	err = r.RecordAction(context.Background(), page.ActionRecord{
		ListingID: "3",
		Action:    page.ActionOffer,
		Wallet:    "0xw",
		Amount:    "0.05",
		TxHash:    "0xabc",
		Status:    page.RecordSuccess,
		CreatedAt: time.UnixMilli(1700000000000),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
