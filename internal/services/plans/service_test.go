package plans

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/storage/memory"
	"github.com/mcoot/plans/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, Config{}, testutil.NopLogger())
	s.ctx = context.Background()

	for _, acc := range []struct {
		id       model.AccountID
		username string
	}{{"acc-1", "alice"}, {"acc-2", "bob"}} {
		s.Require().NoError(s.storage.CreateLocalAccount(s.ctx, &model.Account{
			ID:        acc.id,
			Username:  acc.username,
			CreatedAt: time.Now(),
		}))
	}
}

func (s *ServiceSuite) entries(id model.AccountID) []string {
	account, err := s.service.List(s.ctx, id)
	s.Require().NoError(err)
	return account.Entries
}

func (s *ServiceSuite) TestListEmpty() {
	s.Empty(s.entries("acc-1"))
}

func (s *ServiceSuite) TestListUnknownAccount() {
	_, err := s.service.List(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestAppendThenListEndsWithEntry() {
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", "Walk dog"))
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", "Buy milk"))

	entries := s.entries("acc-1")
	s.Equal("Buy milk", entries[len(entries)-1])
	s.Equal([]string{"Walk dog", "Buy milk"}, entries)
}

func (s *ServiceSuite) TestAppendAcceptsEmptyAndDuplicates() {
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", ""))
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", "x"))
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", "x"))

	s.Equal([]string{"", "x", "x"}, s.entries("acc-1"))
}

func (s *ServiceSuite) TestAppendUnknownAccount() {
	s.ErrorIs(s.service.Append(s.ctx, "nonexistent", "x"), model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestRemoveAllOccurrences() {
	for _, e := range []string{"a", "b", "a"} {
		s.Require().NoError(s.service.Append(s.ctx, "acc-1", e))
	}

	removed, err := s.service.Remove(s.ctx, "acc-1", "acc-1", "a")
	s.Require().NoError(err)
	s.Equal(2, removed)
	s.Equal([]string{"b"}, s.entries("acc-1"))
}

func (s *ServiceSuite) TestRemoveMissingEntryIsNoop() {
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", "a"))

	removed, err := s.service.Remove(s.ctx, "acc-1", "acc-1", "zzz")
	s.Require().NoError(err)
	s.Zero(removed)
	s.Equal([]string{"a"}, s.entries("acc-1"))
}

func (s *ServiceSuite) TestRemoveEmptyTargetMeansCaller() {
	s.Require().NoError(s.service.Append(s.ctx, "acc-1", "a"))

	removed, err := s.service.Remove(s.ctx, "acc-1", "", "a")
	s.Require().NoError(err)
	s.Equal(1, removed)
}

func (s *ServiceSuite) TestAppendThenRemoveEachLeavesEmpty() {
	values := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		values = append(values, fmt.Sprintf("plan-%d", i))
		s.Require().NoError(s.service.Append(s.ctx, "acc-1", values[i]))
	}

	for _, v := range values {
		_, err := s.service.Remove(s.ctx, "acc-1", "acc-1", v)
		s.Require().NoError(err)
	}

	s.Empty(s.entries("acc-1"))
}

func (s *ServiceSuite) TestRemoveOtherAccountForbidden() {
	logger, logs := testutil.CaptureLogger()
	service := New(s.storage, Config{}, logger)
	s.Require().NoError(service.Append(s.ctx, "acc-2", "bob's plan"))

	_, err := service.Remove(s.ctx, "acc-1", "acc-2", "bob's plan")
	s.True(errors.Is(err, ErrForbidden))
	s.Equal([]string{"bob's plan"}, s.entries("acc-2"))

	rec := logs.Find("cross-account delete rejected")
	s.Require().NotNil(rec)
	s.Equal("WARN", rec["level"])
	s.Equal("acc-1", rec["caller"])
	s.Equal("acc-2", rec["target"])
}

func (s *ServiceSuite) TestRemoveOtherAccountWhenAllowed() {
	logger, logs := testutil.CaptureLogger()
	service := New(s.storage, Config{AllowCrossAccountDelete: true}, logger)
	s.Require().NoError(service.Append(s.ctx, "acc-2", "bob's plan"))

	removed, err := service.Remove(s.ctx, "acc-1", "acc-2", "bob's plan")
	s.Require().NoError(err)
	s.Equal(1, removed)
	s.Empty(s.entries("acc-2"))
	s.NotNil(logs.Find("cross-account delete permitted"))
}
