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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"
	"slices"

	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var verificationLevels = []string{models.VerificationBasic, models.VerificationVerified, models.VerificationPremium}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	phoneFlag := flag.String("phone", "", "User's phone number (optional)")
	levelFlag := flag.String("level", models.VerificationBasic, "Verification level: basic, verified or premium")
	flag.Parse()

	if *nameFlag == "" || *emailFlag == "" {
		zap.L().Fatal("Both flags are required: --name and --email")
	}
	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}
	if !slices.Contains(verificationLevels, *levelFlag) {
		zap.L().Fatal("Invalid verification level", zap.String("level", *levelFlag))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	user, err := dbService.CreateUser(ctx, store.CreateUserParams{
		Id:                uuid.New().String(),
		Name:              *nameFlag,
		Email:             *emailFlag,
		Phone:             *phoneFlag,
		VerificationLevel: *levelFlag,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			zap.L().Fatal("User already exists with this email", zap.String("email", *emailFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:           %s\n", user.Id)
	fmt.Printf("Name:         %s\n", user.Name)
	fmt.Printf("Email:        %s\n", user.Email)
	if user.Phone != "" {
		fmt.Printf("Phone:        %s\n", user.Phone)
	}
	fmt.Printf("Verification: %s\n", user.VerificationLevel)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
	fmt.Println("Fund the wallet with: go run cmd/deposit/main.go --email", user.Email, "--amount 100")

	zap.L().Info("User created successfully", zap.String("id", user.Id))
}
