package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/notifier"
	"github.com/trailfund/backend/internal/repositories"
	"github.com/trailfund/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// In-memory repository fakes mirroring the conditional-update semantics of
// the Mongo implementations: the same guards, the same sentinel errors.

type fakeUserRepository struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepository) add(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.FriendRequests == nil {
		user.FriendRequests = []models.FriendRequestEntry{}
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.DateCreated = time.Now()
	f.add(user)
	return nil
}

func (f *fakeUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == identifier || user.Email == identifier {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepository) PushFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID, direction string) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrConflict // unmatched filter, same as Mongo
	}
	for _, friend := range user.Friends {
		if friend == otherID {
			return repositories.ErrConflict
		}
	}
	for _, entry := range user.FriendRequests {
		if entry.UserID == otherID {
			return repositories.ErrConflict
		}
	}
	user.FriendRequests = append(user.FriendRequests, models.FriendRequestEntry{
		UserID:    otherID,
		Direction: direction,
		Date:      time.Now(),
	})
	return nil
}

func (f *fakeUserRepository) PullFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := user.FriendRequests[:0]
	for _, entry := range user.FriendRequests {
		if entry.UserID != otherID {
			kept = append(kept, entry)
		}
	}
	user.FriendRequests = kept
	return nil
}

func (f *fakeUserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	present := false
	for _, friend := range user.Friends {
		if friend == friendID {
			present = true
		}
	}
	if !present {
		user.Friends = append(user.Friends, friendID)
	}
	kept := user.FriendRequests[:0]
	for _, entry := range user.FriendRequests {
		if entry.UserID != friendID {
			kept = append(kept, entry)
		}
	}
	user.FriendRequests = kept
	return nil
}

func (f *fakeUserRepository) ToggleBan(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if user.Status == models.UserStatusBanned {
		user.Status = models.UserStatusActive
	} else {
		user.Status = models.UserStatusBanned
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepository) AddDeviceToken(ctx context.Context, id primitive.ObjectID, token string) error {
	user, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range user.DeviceTokens {
		if existing == token {
			return nil
		}
	}
	user.DeviceTokens = append(user.DeviceTokens, token)
	return nil
}

type fakeCampaignRepository struct {
	campaigns map[primitive.ObjectID]*models.Campaign
}

func newFakeCampaignRepository() *fakeCampaignRepository {
	return &fakeCampaignRepository{campaigns: make(map[primitive.ObjectID]*models.Campaign)}
}

func (f *fakeCampaignRepository) add(campaign *models.Campaign) *models.Campaign {
	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusPending
	}
	f.campaigns[campaign.ID] = campaign
	return campaign
}

func (f *fakeCampaignRepository) GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *campaign
	return &copied, nil
}

func (f *fakeCampaignRepository) GetCampaignsUnderReview(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, campaign := range f.campaigns {
		if campaign.Status == models.CampaignStatusPending || campaign.Status == models.CampaignStatusRevisionRequested {
			out = append(out, *campaign)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepository) underReview(id primitive.ObjectID) (*models.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if campaign.Status != models.CampaignStatusPending && campaign.Status != models.CampaignStatusRevisionRequested {
		return nil, repositories.ErrConflict
	}
	return campaign, nil
}

func (f *fakeCampaignRepository) Approve(ctx context.Context, id, adminID primitive.ObjectID, adminName string) (*models.Campaign, error) {
	campaign, err := f.underReview(id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	campaign.Status = models.CampaignStatusApproved
	campaign.ApprovedBy = adminName
	campaign.ApprovedByID = &adminID
	campaign.DateApproved = &now
	campaign.AdminFeedback = ""
	copied := *campaign
	return &copied, nil
}

func (f *fakeCampaignRepository) Reject(ctx context.Context, id primitive.ObjectID, reason string) (*models.Campaign, error) {
	campaign, err := f.underReview(id)
	if err != nil {
		return nil, err
	}
	campaign.Status = models.CampaignStatusRejected
	campaign.AdminFeedback = reason
	copied := *campaign
	return &copied, nil
}

func (f *fakeCampaignRepository) RequestRevision(ctx context.Context, id primitive.ObjectID, feedback string) (*models.Campaign, error) {
	campaign, err := f.underReview(id)
	if err != nil {
		return nil, err
	}
	campaign.Status = models.CampaignStatusRevisionRequested
	campaign.AdminFeedback = feedback
	copied := *campaign
	return &copied, nil
}

func (f *fakeCampaignRepository) IncrementRaised(ctx context.Context, id primitive.ObjectID, amount float64) error {
	campaign, ok := f.campaigns[id]
	if !ok {
		return repositories.ErrNotFound
	}
	campaign.Raised += amount
	return nil
}

type fakeDonationRepository struct {
	donations map[primitive.ObjectID]*models.Donation
}

func newFakeDonationRepository() *fakeDonationRepository {
	return &fakeDonationRepository{donations: make(map[primitive.ObjectID]*models.Donation)}
}

func (f *fakeDonationRepository) add(donation *models.Donation) *models.Donation {
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	if donation.Status == "" {
		donation.Status = models.DonationStatusPending
	}
	f.donations[donation.ID] = donation
	return donation
}

func (f *fakeDonationRepository) CreateDonation(ctx context.Context, donation *models.Donation) error {
	donation.ID = primitive.NewObjectID()
	donation.Status = models.DonationStatusPending
	donation.Date = time.Now()
	f.donations[donation.ID] = donation
	return nil
}

func (f *fakeDonationRepository) GetDonationsByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Donation, error) {
	var out []models.Donation
	for _, donation := range f.donations {
		if donation.CampaignID == campaignID {
			out = append(out, *donation)
		}
	}
	return out, nil
}

func (f *fakeDonationRepository) settle(campaignID, donationID primitive.ObjectID, status string) (*models.Donation, error) {
	donation, ok := f.donations[donationID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if donation.CampaignID != campaignID || donation.Status != models.DonationStatusPending {
		return nil, repositories.ErrConflict
	}
	donation.Status = status
	if status == models.DonationStatusVerified {
		now := time.Now()
		donation.DateVerified = &now
	}
	copied := *donation
	return &copied, nil
}

func (f *fakeDonationRepository) MarkVerified(ctx context.Context, campaignID, donationID primitive.ObjectID) (*models.Donation, error) {
	return f.settle(campaignID, donationID, models.DonationStatusVerified)
}

func (f *fakeDonationRepository) MarkRejected(ctx context.Context, campaignID, donationID primitive.ObjectID) (*models.Donation, error) {
	return f.settle(campaignID, donationID, models.DonationStatusRejected)
}

type fakeRequestRepository struct {
	requests map[primitive.ObjectID]*models.Request
}

func newFakeRequestRepository() *fakeRequestRepository {
	return &fakeRequestRepository{requests: make(map[primitive.ObjectID]*models.Request)}
}

func (f *fakeRequestRepository) add(request *models.Request) *models.Request {
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	if request.Fulfillments == nil {
		request.Fulfillments = []models.Fulfillment{}
	}
	f.requests[request.ID] = request
	return request
}

func (f *fakeRequestRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepository) AddFulfillment(ctx context.Context, requestID, userID primitive.ObjectID) (*models.Request, error) {
	request, ok := f.requests[requestID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, fulfillment := range request.Fulfillments {
		if fulfillment.UserID == userID {
			return nil, repositories.ErrConflict
		}
	}
	request.Fulfillments = append(request.Fulfillments, models.Fulfillment{UserID: userID, Date: time.Now()})
	copied := *request
	return &copied, nil
}

type fakeNotificationRepository struct {
	notifications []*models.Notification
	opIDs         map[string]bool
}

func newFakeNotificationRepository() *fakeNotificationRepository {
	return &fakeNotificationRepository{opIDs: make(map[string]bool)}
}

func (f *fakeNotificationRepository) add(n *models.Notification) *models.Notification {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	f.notifications = append(f.notifications, n)
	f.opIDs[n.OpID] = true
	return n
}

func (f *fakeNotificationRepository) InsertFromOutbox(ctx context.Context, entry *models.OutboxEntry) error {
	if f.opIDs[entry.OpID] {
		return repositories.ErrConflict
	}
	f.add(&models.Notification{
		OpID:        entry.OpID,
		RecipientID: entry.RecipientID,
		SenderID:    entry.SenderID,
		Type:        entry.Type,
		Message:     entry.Message,
		RelatedID:   entry.RelatedID,
		Date:        time.Now(),
	})
	return nil
}

func (f *fakeNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	var mine []models.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- { // newest first
		if f.notifications[i].RecipientID == recipientID {
			mine = append(mine, *f.notifications[i])
		}
	}
	total := int64(len(mine))
	start := (page - 1) * limit
	if start >= total {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return mine[start:end], total, nil
}

func (f *fakeNotificationRepository) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepository) MarkAsRead(ctx context.Context, notificationID primitive.ObjectID) error {
	for _, n := range f.notifications {
		if n.ID == notificationID {
			n.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

type fakeOutboxRepository struct {
	entries []*models.OutboxEntry
}

func newFakeOutboxRepository() *fakeOutboxRepository {
	return &fakeOutboxRepository{}
}

func (f *fakeOutboxRepository) Enqueue(ctx context.Context, entry *models.OutboxEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.Status = models.OutboxStatusPending
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeOutboxRepository) NextBatch(ctx context.Context, limit int64) ([]models.OutboxEntry, error) {
	var out []models.OutboxEntry
	for _, entry := range f.entries {
		if entry.Status != models.OutboxStatusPending {
			continue
		}
		entry.Attempts++
		out = append(out, *entry)
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutboxRepository) MarkDelivered(ctx context.Context, id primitive.ObjectID) error {
	for _, entry := range f.entries {
		if entry.ID == id {
			now := time.Now()
			entry.Status = models.OutboxStatusDelivered
			entry.DeliveredAt = &now
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	for _, entry := range f.entries {
		if entry.ID == id {
			entry.Status = models.OutboxStatusFailed
			return nil
		}
	}
	return repositories.ErrNotFound
}

// pendingFor returns the staged entries addressed to recipientID
func (f *fakeOutboxRepository) pendingFor(recipientID primitive.ObjectID) []*models.OutboxEntry {
	var out []*models.OutboxEntry
	for _, entry := range f.entries {
		if entry.RecipientID == recipientID && entry.Status == models.OutboxStatusPending {
			out = append(out, entry)
		}
	}
	return out
}

type fakeReportRepository struct {
	reports map[primitive.ObjectID]*models.Report
}

func newFakeReportRepository() *fakeReportRepository {
	return &fakeReportRepository{reports: make(map[primitive.ObjectID]*models.Report)}
}

func (f *fakeReportRepository) add(report *models.Report) *models.Report {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if report.ActionTaken == "" {
		report.ActionTaken = models.ReportActionNone
	}
	f.reports[report.ID] = report
	return report
}

func (f *fakeReportRepository) GetReports(ctx context.Context) ([]models.Report, error) {
	var out []models.Report
	for _, report := range f.reports {
		out = append(out, *report)
	}
	return out, nil
}

func (f *fakeReportRepository) Resolve(ctx context.Context, id primitive.ObjectID, action string) (*models.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if report.ActionTaken != models.ReportActionNone {
		return nil, repositories.ErrConflict
	}
	report.ActionTaken = action
	copied := *report
	return &copied, nil
}

type fakeOrganizationRepository struct {
	organizations map[primitive.ObjectID]*models.Organization
}

func newFakeOrganizationRepository() *fakeOrganizationRepository {
	return &fakeOrganizationRepository{organizations: make(map[primitive.ObjectID]*models.Organization)}
}

func (f *fakeOrganizationRepository) add(org *models.Organization) *models.Organization {
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	if org.Status == "" {
		org.Status = models.OrganizationStatusPending
	}
	f.organizations[org.ID] = org
	return org
}

func (f *fakeOrganizationRepository) GetPendingOrganizations(ctx context.Context) ([]models.Organization, error) {
	var out []models.Organization
	for _, org := range f.organizations {
		if org.Status == models.OrganizationStatusPending {
			out = append(out, *org)
		}
	}
	return out, nil
}

func (f *fakeOrganizationRepository) Approve(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	org, ok := f.organizations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if org.Status != models.OrganizationStatusPending {
		return nil, repositories.ErrConflict
	}
	org.Status = models.OrganizationStatusApproved
	copied := *org
	return &copied, nil
}

type fakeAuditRepository struct {
	records []models.AuditRecord
}

func newFakeAuditRepository() *fakeAuditRepository {
	return &fakeAuditRepository{}
}

func (f *fakeAuditRepository) Record(record *models.AuditRecord) error {
	record.CreatedAt = time.Now()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAuditRepository) ListRecent(limit int) ([]models.AuditRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	out := make([]models.AuditRecord, limit)
	copy(out, f.records[len(f.records)-limit:])
	return out, nil
}

// --- test harness helpers ---

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func newTestNotifier(outbox repositories.OutboxRepository) *notifier.Notifier {
	return notifier.New(outbox, zap.NewNop())
}

// newRequestContext builds an echo context carrying JWT claims for userID
func newRequestContext(e *echo.Echo, method, target, body string, userID primitive.ObjectID, role string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !userID.IsZero() {
		c.Set("user", &models.JwtCustomClaims{UserID: userID.Hex(), Role: role})
	}
	return c, rec
}

func httpStatus(err error) int {
	if httpErr, ok := err.(*echo.HTTPError); ok {
		return httpErr.Code
	}
	return http.StatusOK
}
