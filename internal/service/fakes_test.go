package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"gorm.io/gorm"
)

// memState backs the in-memory repository fakes. All fakes share one state
// so cross-entity operations (accept, cascades) behave like the real
// transactional repositories.
type memState struct {
	mu       sync.Mutex
	users    map[string]*model.User
	listings map[uint64]*model.Listing
	requests map[uint64]*model.ExchangeRequest
	chats    map[uint64]*model.ChatChannel
	messages map[uint64]*model.Message
	nextID   uint64
	clock    time.Time
}

func newMemState() *memState {
	return &memState{
		users:    make(map[string]*model.User),
		listings: make(map[uint64]*model.Listing),
		requests: make(map[uint64]*model.ExchangeRequest),
		chats:    make(map[uint64]*model.ChatChannel),
		messages: make(map[uint64]*model.Message),
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (st *memState) id() uint64 {
	st.nextID++
	return st.nextID
}

// now returns a strictly increasing server clock.
func (st *memState) now() time.Time {
	st.clock = st.clock.Add(time.Second)
	return st.clock
}

type fakeListingRepo struct {
	st         *memState
	failCreate bool
}

func (r *fakeListingRepo) SetDB(*gorm.DB) {}

func (r *fakeListingRepo) Create(_ context.Context, l *model.Listing) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("insert failed")
	}
	l.ID = r.st.id()
	cp := *l
	r.st.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uint64) (*model.Listing, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	l, ok := r.st.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeListingRepo) ListAll(context.Context) ([]model.Listing, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := make([]model.Listing, 0, len(r.st.listings))
	for id := uint64(1); id <= r.st.nextID; id++ {
		if l, ok := r.st.listings[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) ListByOwner(_ context.Context, ownerUID string) ([]model.Listing, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Listing
	for id := uint64(1); id <= r.st.nextID; id++ {
		if l, ok := r.st.listings[id]; ok && l.OwnerUID == ownerUID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) Update(_ context.Context, l *model.Listing) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *l
	r.st.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.listings, id)
	return nil
}

type fakeRequestRepo struct {
	st *memState
}

func (r *fakeRequestRepo) SetDB(*gorm.DB) {}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.ExchangeRequest) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.requests {
		if existing.ListingID == req.ListingID && existing.RequesterUID == req.RequesterUID {
			return gorm.ErrDuplicatedKey
		}
	}
	req.ID = r.st.id()
	req.CreatedAt = r.st.now()
	cp := *req
	r.st.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uint64) (*model.ExchangeRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	req, ok := r.st.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) FindPending(_ context.Context, listingID uint64, requesterUID string) (*model.ExchangeRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, req := range r.st.requests {
		if req.ListingID == listingID && req.RequesterUID == requesterUID && req.Status == model.RequestStatusPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRequestRepo) ListByOwner(_ context.Context, ownerUID string) ([]model.ExchangeRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.ExchangeRequest
	for _, req := range r.st.requests {
		if req.OwnerUID == ownerUID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByRequester(_ context.Context, requesterUID string) ([]model.ExchangeRequest, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.ExchangeRequest
	for _, req := range r.st.requests {
		if req.RequesterUID == requesterUID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.requests, id)
	return nil
}

type fakeChatRepo struct {
	st *memState
}

func (r *fakeChatRepo) SetDB(*gorm.DB) {}

func (r *fakeChatRepo) FindByID(_ context.Context, id uint64) (*model.ChatChannel, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	ch, ok := r.st.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeChatRepo) FindForPair(_ context.Context, listingID uint64, uidA, uidB string) (*model.ChatChannel, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, ch := range r.st.chats {
		if ch.ListingID != listingID {
			continue
		}
		if (ch.OwnerUID == uidA && ch.RequesterUID == uidB) || (ch.OwnerUID == uidB && ch.RequesterUID == uidA) {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) ListByUser(_ context.Context, uid string) ([]model.ChatChannel, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.ChatChannel
	for _, ch := range r.st.chats {
		if ch.OwnerUID == uid || ch.RequesterUID == uid {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CreateFromRequest(_ context.Context, chat *model.ChatChannel, requestID uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, ch := range r.st.chats {
		if ch.ListingID == chat.ListingID && ch.RequesterUID == chat.RequesterUID {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := r.st.requests[requestID]; !ok {
		return gorm.ErrRecordNotFound
	}
	chat.ID = r.st.id()
	cp := *chat
	r.st.chats[chat.ID] = &cp
	delete(r.st.requests, requestID)
	return nil
}

func (r *fakeChatRepo) DeleteCascade(_ context.Context, chatID, listingID uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for id, msg := range r.st.messages {
		if msg.ChatID == chatID {
			delete(r.st.messages, id)
		}
	}
	delete(r.st.chats, chatID)
	delete(r.st.listings, listingID)
	for id, req := range r.st.requests {
		if req.ListingID == listingID {
			delete(r.st.requests, id)
		}
	}
	return nil
}

func (r *fakeChatRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	msg.ID = r.st.id()
	msg.CreatedAt = r.st.now()
	cp := *msg
	r.st.messages[msg.ID] = &cp
	return nil
}

func (r *fakeChatRepo) ListMessages(_ context.Context, chatID uint64) ([]model.Message, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Message
	for id := uint64(1); id <= r.st.nextID; id++ {
		if msg, ok := r.st.messages[id]; ok && msg.ChatID == chatID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) FindMessage(_ context.Context, id uint64) (*model.Message, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	msg, ok := r.st.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *msg
	return &cp, nil
}

func (r *fakeChatRepo) DeleteMessage(_ context.Context, id uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.messages, id)
	return nil
}

type fakeUserRepo struct {
	st *memState
}

func (r *fakeUserRepo) SetDB(*gorm.DB) {}

func (r *fakeUserRepo) Ensure(_ context.Context, user *model.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if existing, ok := r.st.users[user.UID]; ok {
		*user = *existing
		return nil
	}
	cp := *user
	r.st.users[user.UID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByUID(_ context.Context, uid string) (*model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *user
	r.st.users[user.UID] = &cp
	return nil
}

func (r *fakeUserRepo) DeleteCascade(_ context.Context, uid string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for id, ch := range r.st.chats {
		if ch.OwnerUID == uid || ch.RequesterUID == uid {
			for mid, msg := range r.st.messages {
				if msg.ChatID == id {
					delete(r.st.messages, mid)
				}
			}
			delete(r.st.chats, id)
		}
	}
	for id, l := range r.st.listings {
		if l.OwnerUID == uid {
			delete(r.st.listings, id)
		}
	}
	for id, req := range r.st.requests {
		if req.RequesterUID == uid || req.OwnerUID == uid {
			delete(r.st.requests, id)
		}
	}
	delete(r.st.users, uid)
	return nil
}

type fakeUploader struct {
	mu              sync.Mutex
	uploads         []string
	deleted         []string
	deletedPrefixes []string
	failUpload      bool
}

func (u *fakeUploader) Upload(_ context.Context, category, ownerUID string, data []byte, _ string) (string, string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failUpload {
		return "", "", fmt.Errorf("upload failed")
	}
	path := fmt.Sprintf("%s/%s/%d.jpg", category, ownerUID, len(u.uploads)+1)
	u.uploads = append(u.uploads, path)
	return "https://storage.example.com/" + path, path, nil
}

func (u *fakeUploader) Delete(_ context.Context, objectPath string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, objectPath)
	return nil
}

func (u *fakeUploader) DeleteAllFor(_ context.Context, category, ownerUID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deletedPrefixes = append(u.deletedPrefixes, category+"/"+ownerUID)
	return nil
}

type fakeIdentity struct {
	name       string
	email      string
	pictureURL *string
	deleted    []string
}

func (p *fakeIdentity) GetUser(context.Context, string) (string, string, *string, error) {
	return p.name, p.email, p.pictureURL, nil
}

func (p *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	p.deleted = append(p.deleted, uid)
	return nil
}
