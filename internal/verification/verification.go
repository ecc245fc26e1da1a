// Package verification is the out-of-band code channel used to prove a user
// holds a phone number. Codes are shown to the user directly; nothing is
// sent over SMS.
package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrPhoneRequired = errors.New("请输入手机号")

type Service struct {
	store     CodeStore
	generator *Generator
	ttl       time.Duration
	log       *logrus.Entry
}

func NewService(store CodeStore, generator *Generator, ttl time.Duration, logger *logrus.Entry) *Service {
	if store == nil {
		store = NewMemoryCodeStore()
	}
	if generator == nil {
		generator = NewGenerator(DefaultCodeLength)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		store:     store,
		generator: generator,
		ttl:       ttl,
		log:       logger.WithField("component", "verification"),
	}
}

// SendCode issues a fresh code for phone, replacing the previous one, and
// returns it for display.
func (s *Service) SendCode(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrPhoneRequired
	}
	code, err := s.generator.Generate()
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, phone, code, s.ttl); err != nil {
		return "", err
	}
	s.log.WithField("phone", phone).Debug("verification code issued")
	return code, nil
}

// VerifyCode reports whether input matches the latest code for phone. The
// code stays valid after a successful check.
func (s *Service) VerifyCode(ctx context.Context, phone string, input string) (bool, error) {
	code, ok, err := s.store.Get(ctx, strings.TrimSpace(phone))
	if err != nil || !ok {
		return false, err
	}
	input = strings.TrimSpace(input)
	return subtle.ConstantTimeCompare([]byte(code), []byte(input)) == 1, nil
}
