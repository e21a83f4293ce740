package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"
)

func TestCreateUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user, err := service.CreateUser(ctx, store.CreateUserParams{
		Id: "user1", Name: "Ada Okafor", Email: "ada@example.com", Phone: "+2348011112222",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.VerificationLevel != models.VerificationBasic {
		t.Errorf("Expected verification level %s, got %s", models.VerificationBasic, user.VerificationLevel)
	}

	_, err = service.CreateUser(ctx, store.CreateUserParams{Id: "user2", Name: "Other", Email: "ada@example.com"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("Expected ErrUserExists, got %v", err)
	}

	_, err = service.GetUserById(ctx, "missing")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestRecipients_DuplicateNaturalKey(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	first := &models.Recipient{
		Id: "r1", UserId: "user1", Type: models.RecipientTypeBank, Name: "Ada",
		Currency: "NGN", BankCode: "gtb", AccountNumber: "0123 456 789", CreatedAt: testTime,
	}
	if err := service.InsertRecipient(ctx, first); err != nil {
		t.Fatalf("InsertRecipient failed: %v", err)
	}

	// Same destination, different display name and formatting
	second := &models.Recipient{
		Id: "r2", UserId: "user1", Type: models.RecipientTypeBank, Name: "Ada O.",
		Currency: "NGN", BankCode: " GTB", AccountNumber: "0123456789", CreatedAt: testTime,
	}
	err := service.InsertRecipient(ctx, second)
	if !errors.Is(err, store.ErrDuplicateRecipient) {
		t.Fatalf("Expected ErrDuplicateRecipient, got %v", err)
	}

	// Another user may save the same destination
	second.UserId = "user2"
	if err := service.InsertRecipient(ctx, second); err != nil {
		t.Fatalf("InsertRecipient for second user failed: %v", err)
	}
}

func TestRecipients_ListGetDelete(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	for i, phone := range []string{"+254700000001", "+254700000002"} {
		r := &models.Recipient{
			Id: []string{"r1", "r2"}[i], UserId: "user1", Type: models.RecipientTypePeer, Name: "Peer",
			Currency: models.PeggedCurrency, Phone: phone, CreatedAt: testTime.Add(time.Duration(i) * time.Second),
		}
		if err := service.InsertRecipient(ctx, r); err != nil {
			t.Fatalf("InsertRecipient failed: %v", err)
		}
	}

	list, err := service.GetRecipients(ctx, "user1")
	if err != nil {
		t.Fatalf("GetRecipients failed: %v", err)
	}
	if len(list) != 2 || list[0].Id != "r1" {
		t.Fatalf("Expected [r1 r2], got %+v", list)
	}

	got, err := service.GetRecipient(ctx, "user1", "r2")
	if err != nil {
		t.Fatalf("GetRecipient failed: %v", err)
	}
	if got.Phone != "+254700000002" {
		t.Errorf("Expected phone +254700000002, got %s", got.Phone)
	}

	if err := service.DeleteRecipient(ctx, "user1", "r2"); err != nil {
		t.Fatalf("DeleteRecipient failed: %v", err)
	}
	if err := service.DeleteRecipient(ctx, "user1", "r2"); !errors.Is(err, store.ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound, got %v", err)
	}
	if _, err := service.GetRecipient(ctx, "user1", "r2"); !errors.Is(err, store.ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound, got %v", err)
	}
}

func TestKeyValue(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, ok, err := service.GetValue(ctx, "missing"); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := service.SetValue(ctx, "recipients_user1", []byte(`{"migrated":true}`)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := service.SetValue(ctx, "recipients_user1", []byte(`{"migrated":false}`)); err != nil {
		t.Fatalf("SetValue overwrite failed: %v", err)
	}

	value, ok, err := service.GetValue(ctx, "recipients_user1")
	if err != nil || !ok {
		t.Fatalf("Expected stored key, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"migrated":false}` {
		t.Errorf("Expected overwritten value, got %s", value)
	}
}
