// Package service implements PIN login and session management.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/auth/domain"
	"github.com/coopfoods/ajomart/internal/auth/pin"
	"github.com/coopfoods/ajomart/internal/config"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"github.com/coopfoods/ajomart/pkg/db"
	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// adminCategory marks members whose sessions carry the admin role. Member
// records are maintained by the external membership system; the category
// field is the only role signal it exports.
const adminCategory = "ADMIN"

type Params struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	MemberRepo memberdomain.Repository
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	memberRepo memberdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:        p.Config,
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		memberRepo: p.MemberRepo,
	}
}

func (s *Service) Login(ctx context.Context, memberCode, rawPIN string) (domain.LoginResult, error) {
	member, err := s.memberRepo.FindByCode(ctx, s.db, memberCode)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if member == nil || member.PINHash == nil || !member.IsActive {
		// burn a verification anyway so a missing member costs the same
		pin.Verify(rawPIN, "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}
	if !pin.Verify(rawPIN, *member.PINHash) {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	roles := pq.StringArray{domain.RoleMember}
	if member.Category == adminCategory {
		roles = append(roles, domain.RoleAdmin)
	}

	var (
		token   string
		session domain.Session
	)
	for attempt := 0; ; attempt++ {
		token, err = newToken()
		if err != nil {
			return domain.LoginResult{}, err
		}

		session = domain.Session{
			ID:        s.genID.Generate(),
			MemberID:  member.ID,
			TokenHash: hashToken(token),
			Roles:     roles,
			ExpiresAt: time.Now().UTC().Add(s.cfg.SessionTTL),
			CreatedAt: time.Now().UTC(),
		}
		err = s.repo.Insert(ctx, s.db, &session)
		if err == nil {
			break
		}
		// a token-hash collision gets one fresh draw
		if !db.IsDuplicateKeyErr(err) || attempt > 0 {
			return domain.LoginResult{}, err
		}
	}

	return domain.LoginResult{
		Token:      token,
		Session:    session,
		MemberCode: member.MemberCode,
		MemberName: member.Name,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteByTokenHash(ctx, s.db, hashToken(token))
}

func (s *Service) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	session, err := s.repo.FindByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		_ = s.repo.DeleteByTokenHash(ctx, s.db, session.TokenHash)
		return domain.Session{}, domain.ErrSessionExpired
	}
	return *session, nil
}

func (s *Service) SetPIN(ctx context.Context, memberCode, rawPIN string) error {
	if len(rawPIN) < 4 {
		return fmt.Errorf("%w: pin too short", domain.ErrInvalidCredentials)
	}

	member, err := s.memberRepo.FindByCode(ctx, s.db, memberCode)
	if err != nil {
		return err
	}
	if member == nil {
		return memberdomain.ErrNotFound
	}

	hash, err := pin.Hash(rawPIN)
	if err != nil {
		return err
	}
	return s.memberRepo.UpdatePINHash(ctx, s.db, member.ID, hash)
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
