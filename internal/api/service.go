/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/rates"
	"remit-wallet-go/internal/registry"
	"remit-wallet-go/internal/store"
	"remit-wallet-go/internal/transfer"

	"github.com/google/uuid"
)

// ErrInvalidRequest marks malformed input that never reached the domain layer
var ErrInvalidRequest = errors.New("invalid request")

// WalletService is the application facade used by the HTTP handlers and CLIs
type WalletService struct {
	directory    store.Directory
	ledger       store.Ledger
	recipients   *registry.Registry
	orchestrator *transfer.Orchestrator
	feed         *rates.Feed
}

func NewWalletService(directory store.Directory, ledger store.Ledger, recipients *registry.Registry, orchestrator *transfer.Orchestrator, feed *rates.Feed) *WalletService {
	return &WalletService{
		directory:    directory,
		ledger:       ledger,
		recipients:   recipients,
		orchestrator: orchestrator,
		feed:         feed,
	}
}

func (s *WalletService) HealthCheck(ctx context.Context) error {
	_, err := s.directory.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// CreateUser registers a new wallet user
func (s *WalletService) CreateUser(ctx context.Context, name, email, phone string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidRequest)
	}

	return s.directory.CreateUser(ctx, store.CreateUserParams{
		Id:    uuid.New().String(),
		Name:  name,
		Email: email,
		Phone: strings.TrimSpace(phone),
	})
}

func (s *WalletService) GetUser(ctx context.Context, userId string) (*models.User, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.directory.GetUserById(ctx, userId)
}

func (s *WalletService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.directory.GetUsers(ctx)
}
