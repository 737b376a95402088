package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/walletsvc/wallet_service/internal/apperr"
	"github.com/walletsvc/wallet_service/internal/metrics"
	"github.com/walletsvc/wallet_service/internal/notification"
	"github.com/walletsvc/wallet_service/internal/respond"
)

const (
	// CardPrefixLength is how many leading card digits are stored.
	CardPrefixLength = 6
	// DefaultMaxPerOwner caps the number of wallets a user may hold.
	DefaultMaxPerOwner = 5
)

const (
	msgCreated     = "Wallet added successfully"
	msgCreateError = "An error occurred while adding wallet"
	msgRetrieved   = "Wallet retrieved successfully"
	msgGetError    = "An error occurred while getting wallet"
	msgRemoved     = "Wallet removed successfully"
	msgRemoveError = "An error occurred while removing wallet"
	msgListed      = "Wallets retrieved successfully"
	msgListError   = "An error occurred while getting wallets"
	msgDupAccount  = "Wallet with the same account number already exists"
	msgDupName     = "Wallet with the same name already exists"
	msgDupCard     = "Wallet with the same card number already exists"
	msgNoWalletID  = "No wallet id provided"
	msgInvalidID   = "Invalid wallet id"
)

// CreateInput is a wallet creation request. Type and AccountScheme are
// matched case-insensitively.
type CreateInput struct {
	Name          string
	Type          string
	AccountNumber string
	AccountScheme string
	Owner         string
}

// Service implements wallet provisioning, lookup, removal and listing.
type Service struct {
	repo        Repository
	notifier    notification.Notifier
	logger      *slog.Logger
	maxPerOwner int
	now         func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithMaxPerOwner overrides DefaultMaxPerOwner. Values below 1 are ignored.
func WithMaxPerOwner(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPerOwner = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the wallet engine. A nil notifier drops notifications.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger, opts ...Option) *Service {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	s := &Service{
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
		maxPerOwner: DefaultMaxPerOwner,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create runs the provisioning pipeline for caller. Checks run in a fixed
// order and the first failure decides the result.
func (s *Service) Create(ctx context.Context, in CreateInput, caller string) respond.Result[Wallet] {
	w, err := s.create(ctx, in, caller)
	if err != nil {
		s.logFailure("wallet.create", caller, err, slog.String("name", in.Name))
		return record("wallet.create", respond.Fail[Wallet](err, msgCreateError))
	}
	s.logger.Info("wallet.create completed",
		slog.String("wallet_id", w.ID),
		slog.String("owner", w.Owner),
		slog.String("type", string(w.Type)),
	)
	s.notify(ctx, notification.KindWalletProvisioned, w)
	return record("wallet.create", respond.Created(w, msgCreated))
}

func (s *Service) create(ctx context.Context, in CreateInput, caller string) (Wallet, error) {
	if caller == "" || in.Owner != caller {
		return Wallet{}, apperr.Unauthorizedf("Unauthorized attempt to create wallet")
	}
	typ, ok := ParseType(in.Type)
	if !ok {
		return Wallet{}, apperr.Invalid("Invalid wallet type")
	}
	scheme, ok := ParseScheme(in.AccountScheme)
	if !ok {
		return Wallet{}, apperr.Invalid("Invalid account scheme")
	}
	if !typ.Accepts(scheme) {
		return Wallet{}, apperr.Invalid(fmt.Sprintf("Invalid account scheme for %s wallet", strings.ToLower(string(typ))))
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Wallet{}, apperr.Invalid("Wallet name is required")
	}
	number := strings.TrimSpace(in.AccountNumber)
	if number == "" {
		return Wallet{}, apperr.Invalid("Account number is required")
	}
	stored := number
	if typ == TypeCard {
		if len(number) < CardPrefixLength || !digitsOnly(number) {
			return Wallet{}, apperr.Invalid("Invalid card number")
		}
		stored = number[:CardPrefixLength]
	}

	if found, err := s.repo.ExistsByAccountNumber(ctx, number); err != nil {
		return Wallet{}, apperr.Wrap(apperr.Internal, "check account number", err)
	} else if found {
		return Wallet{}, apperr.Conflicting(msgDupAccount)
	}
	if found, err := s.repo.ExistsByName(ctx, name); err != nil {
		return Wallet{}, apperr.Wrap(apperr.Internal, "check wallet name", err)
	} else if found {
		return Wallet{}, apperr.Conflicting(msgDupName)
	}
	if typ == TypeCard {
		if found, err := s.repo.ExistsByAccountNumber(ctx, stored); err != nil {
			return Wallet{}, apperr.Wrap(apperr.Internal, "check card number", err)
		} else if found {
			return Wallet{}, apperr.Conflicting(msgDupCard)
		}
	}
	owned, err := s.repo.CountByOwner(ctx, caller)
	if err != nil {
		return Wallet{}, apperr.Wrap(apperr.Internal, "count owner wallets", err)
	}
	if owned >= s.maxPerOwner {
		return Wallet{}, apperr.Conflicting(fmt.Sprintf("A user cannot have more than %d wallets", s.maxPerOwner))
	}

	w := Wallet{
		ID:            uuid.NewString(),
		Name:          name,
		Type:          typ,
		AccountNumber: stored,
		AccountScheme: scheme,
		Owner:         caller,
		CreatedAt:     s.now().UTC(),
	}
	saved, err := s.repo.Insert(ctx, w)
	switch {
	case errors.Is(err, ErrAccountNumberTaken):
		if typ == TypeCard {
			return Wallet{}, apperr.Wrap(apperr.Conflict, msgDupCard, err)
		}
		return Wallet{}, apperr.Wrap(apperr.Conflict, msgDupAccount, err)
	case errors.Is(err, ErrNameTaken):
		return Wallet{}, apperr.Wrap(apperr.Conflict, msgDupName, err)
	case err != nil:
		return Wallet{}, apperr.Wrap(apperr.Internal, "insert wallet", err)
	}
	return saved, nil
}

// Get returns the wallet identified by id when caller owns it.
func (s *Service) Get(ctx context.Context, id, caller string) respond.Result[Wallet] {
	w, err := s.owned(ctx, id, caller, "Unauthorized attempt to get wallet")
	if err != nil {
		s.logFailure("wallet.get", caller, err, slog.String("wallet_id", id))
		return record("wallet.get", respond.Fail[Wallet](err, msgGetError))
	}
	return record("wallet.get", respond.OK(w, msgRetrieved))
}

// Remove deletes the wallet identified by id when caller owns it.
func (s *Service) Remove(ctx context.Context, id, caller string) respond.Result[bool] {
	w, err := s.owned(ctx, id, caller, "Unauthorized attempt to remove wallet")
	if err == nil {
		var n int64
		n, err = s.repo.DeleteByID(ctx, w.ID)
		switch {
		case err != nil:
			err = apperr.Wrap(apperr.Internal, "delete wallet", err)
		case n == 0:
			err = apperr.Missing("Wallet removal failed")
		}
	}
	if err != nil {
		s.logFailure("wallet.remove", caller, err, slog.String("wallet_id", id))
		return record("wallet.remove", respond.Fail[bool](err, msgRemoveError))
	}
	s.logger.Info("wallet.remove completed", slog.String("wallet_id", w.ID), slog.String("owner", w.Owner))
	s.notify(ctx, notification.KindWalletRemoved, w)
	return record("wallet.remove", respond.OK(true, msgRemoved))
}

func (s *Service) owned(ctx context.Context, id, caller, deny string) (Wallet, error) {
	if id == "" {
		return Wallet{}, apperr.Invalid(msgNoWalletID)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, apperr.Invalid(msgInvalidID)
	}
	w, err := s.repo.FindByID(ctx, parsed.String())
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Wallet{}, apperr.Wrap(apperr.Internal, "find wallet", err)
	}
	// A missing wallet reads as not owned.
	if err != nil || caller == "" || w.Owner != caller {
		return Wallet{}, apperr.Unauthorizedf(deny)
	}
	return w, nil
}

// List returns one page over every wallet in the store.
func (s *Service) List(ctx context.Context, pageNumber, pageSize int) respond.Result[Page] {
	page, err := s.list(ctx, "", pageNumber, pageSize)
	if err != nil {
		s.logFailure("wallet.list", "", err)
		return record("wallet.list", respond.Fail[Page](err, msgListError))
	}
	return record("wallet.list", respond.OK(page, msgListed))
}

// ListForOwner returns one page over the caller's wallets.
func (s *Service) ListForOwner(ctx context.Context, caller string, pageNumber, pageSize int) respond.Result[Page] {
	var (
		page Page
		err  error
	)
	if caller == "" {
		err = apperr.Unauthorizedf("Unauthorized attempt to get wallets")
	} else {
		page, err = s.list(ctx, caller, pageNumber, pageSize)
	}
	if err != nil {
		s.logFailure("wallet.list_user", caller, err)
		return record("wallet.list_user", respond.Fail[Page](err, msgListError))
	}
	return record("wallet.list_user", respond.OK(page, msgListed))
}

// list pages over all wallets, or over owner's when owner is set.
func (s *Service) list(ctx context.Context, owner string, pageNumber, pageSize int) (Page, error) {
	if pageNumber < 1 {
		return Page{}, apperr.Invalid("Invalid page number")
	}
	if pageSize < 1 {
		return Page{}, apperr.Invalid("Invalid page size")
	}
	empty := "No wallets found"
	if owner != "" {
		empty = "No wallets found for this user"
	}
	if pageNumber-1 > math.MaxInt/pageSize {
		return Page{}, apperr.Missing(empty)
	}
	offset := (pageNumber - 1) * pageSize

	var (
		data  []Wallet
		total int
		err   error
	)
	if owner == "" {
		data, err = s.repo.ListPage(ctx, offset, pageSize)
	} else {
		data, err = s.repo.ListPageByOwner(ctx, owner, offset, pageSize)
	}
	if err != nil {
		return Page{}, apperr.Wrap(apperr.Internal, "list wallets", err)
	}
	if len(data) == 0 {
		return Page{}, apperr.Missing(empty)
	}
	if owner == "" {
		total, err = s.repo.CountAll(ctx)
	} else {
		total, err = s.repo.CountByOwner(ctx, owner)
	}
	if err != nil {
		return Page{}, apperr.Wrap(apperr.Internal, "count wallets", err)
	}
	return Page{TotalCount: total, PageNumber: pageNumber, PageSize: pageSize, Data: data}, nil
}

func (s *Service) notify(ctx context.Context, kind string, w Wallet) {
	body := fmt.Sprintf("%s wallet %q (%s)", w.Type, w.Name, w.ID)
	msg := notification.Message{Kind: kind, Destination: w.Owner, Body: body, At: s.now().UTC()}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("wallet notification failed", slog.String("kind", kind), slog.String("wallet_id", w.ID), slog.Any("error", err))
	}
}

func (s *Service) logFailure(op, caller string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("caller", caller))
	if apperr.KindOf(err) == apperr.Internal {
		s.logger.Error(op+" failed", append(attrs, slog.Any("error", err))...)
		return
	}
	s.logger.Warn(op+" rejected", append(attrs, slog.String("reason", apperr.MessageOf(err, "")))...)
}

func record[T any](op string, r respond.Result[T]) respond.Result[T] {
	metrics.RecordOperation(op, r.Code)
	return r
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
