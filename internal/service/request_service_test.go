package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mangaswap/mangaswap-backend/internal/model"
)

func newRequestFixture() (*memState, RequestService) {
	st := newMemState()
	listingRepo := &fakeListingRepo{st: st}
	requestRepo := &fakeRequestRepo{st: st}
	chatRepo := &fakeChatRepo{st: st}
	return st, NewRequestService(requestRepo, listingRepo, chatRepo)
}

func seedListing(st *memState, ownerUID string) uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.id()
	st.listings[id] = &model.Listing{
		ID: id, Title: "Naruto", Author: "Masashi Kishimoto", Volume: 1,
		Condition: 5, ImageURL: "https://example.com/naruto.jpg",
		OwnerUID: ownerUID, Latitude: 35.6895, Longitude: 139.6917,
	}
	return id
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	req, err := svc.Submit(context.Background(), listingID, "u2")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != model.RequestStatusPending {
		t.Fatalf("status=%s", req.Status)
	}
	if req.OwnerUID != "u1" || req.RequesterUID != "u2" || req.ListingID != listingID {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(st.requests) != 1 {
		t.Fatalf("want 1 request record, got %d", len(st.requests))
	}
}

func TestSubmitDuplicateFails(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	first, err := svc.Submit(context.Background(), listingID, "u2")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = svc.Submit(context.Background(), listingID, "u2")
	if !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("want ErrAlreadyRequested, got %v", err)
	}
	if _, ok := st.requests[first.ID]; !ok {
		t.Fatal("first request must be unaffected")
	}
	if len(st.requests) != 1 {
		t.Fatalf("want 1 request record, got %d", len(st.requests))
	}
}

func TestSubmitOwnListingFails(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	_, err := svc.Submit(context.Background(), listingID, "u1")
	if !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("want ErrSelfRequest, got %v", err)
	}
	if len(st.requests) != 0 {
		t.Fatalf("no request record may be created, got %d", len(st.requests))
	}
}

func TestSubmitMissingListing(t *testing.T) {
	_, svc := newRequestFixture()
	_, err := svc.Submit(context.Background(), 999, "u2")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAcceptCreatesChatAndDeletesRequest(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	req, err := svc.Submit(context.Background(), listingID, "u2")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	chat, err := svc.Accept(context.Background(), req.ID, "u1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	// both postconditions must hold together: the chat exists with the
	// right pair and listing, and no request record remains
	if chat.ListingID != listingID {
		t.Fatalf("chat listing=%d want %d", chat.ListingID, listingID)
	}
	if !chat.HasParticipant("u1") || !chat.HasParticipant("u2") {
		t.Fatalf("wrong participants: %+v", chat)
	}
	if len(st.chats) != 1 {
		t.Fatalf("want exactly 1 chat, got %d", len(st.chats))
	}
	if len(st.requests) != 0 {
		t.Fatalf("want 0 request records, got %d", len(st.requests))
	}
}

func TestAcceptByNonOwnerFails(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	req, _ := svc.Submit(context.Background(), listingID, "u2")
	for _, caller := range []string{"u2", "u3"} {
		if _, err := svc.Accept(context.Background(), req.ID, caller); !errors.Is(err, ErrForbidden) {
			t.Fatalf("caller %s: want ErrForbidden, got %v", caller, err)
		}
	}
	if len(st.requests) != 1 {
		t.Fatal("request must survive a forbidden accept")
	}
}

func TestAcceptWithExistingChatConflicts(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	first, _ := svc.Submit(context.Background(), listingID, "u2")
	if _, err := svc.Accept(context.Background(), first.ID, "u1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// a second pending request for the same pair can exist again after the
	// first resolved; accepting it must conflict, not silently resolve
	second, err := svc.Submit(context.Background(), listingID, "u2")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	_, err = svc.Accept(context.Background(), second.ID, "u1")
	if !errors.Is(err, ErrChatAlreadyExists) {
		t.Fatalf("want ErrChatAlreadyExists, got %v", err)
	}
	if _, ok := st.requests[second.ID]; !ok {
		t.Fatal("conflicting accept must leave the request untouched")
	}
	if len(st.chats) != 1 {
		t.Fatalf("want 1 chat, got %d", len(st.chats))
	}
}

func TestAcceptMissingRequest(t *testing.T) {
	_, svc := newRequestFixture()
	if _, err := svc.Accept(context.Background(), 42, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRejectDeletesRequest(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	tests := []struct {
		name   string
		caller string
	}{
		{"by owner", "u1"},
		{"by requester", "u2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := svc.Submit(context.Background(), listingID, "u2")
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if err := svc.Reject(context.Background(), req.ID, tt.caller); err != nil {
				t.Fatalf("reject: %v", err)
			}
			if len(st.requests) != 0 {
				t.Fatalf("want 0 requests, got %d", len(st.requests))
			}
			if len(st.chats) != 0 {
				t.Fatal("reject must not create a chat")
			}
		})
	}
}

func TestRejectByStrangerFails(t *testing.T) {
	st, svc := newRequestFixture()
	listingID := seedListing(st, "u1")

	req, _ := svc.Submit(context.Background(), listingID, "u2")
	if err := svc.Reject(context.Background(), req.ID, "u3"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if len(st.requests) != 1 {
		t.Fatal("request must survive a forbidden reject")
	}
}

func TestListIncomingOutgoing(t *testing.T) {
	st, svc := newRequestFixture()
	l1 := seedListing(st, "u1")
	l2 := seedListing(st, "u2")

	if _, err := svc.Submit(context.Background(), l1, "u2"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), l2, "u1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	incoming, err := svc.ListIncoming(context.Background(), "u1")
	if err != nil || len(incoming) != 1 || incoming[0].RequesterUID != "u2" {
		t.Fatalf("incoming=%v err=%v", incoming, err)
	}
	outgoing, err := svc.ListOutgoing(context.Background(), "u1")
	if err != nil || len(outgoing) != 1 || outgoing[0].ListingID != l2 {
		t.Fatalf("outgoing=%v err=%v", outgoing, err)
	}
}
