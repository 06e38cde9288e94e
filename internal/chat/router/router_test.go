package router

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendor-portal-chatbot/internal/common/config"
	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/models"
)

// --- In-memory collaborator fakes ---

type fakeVendors struct {
	records map[string]models.VendorRecord
	err     error
}

func (f *fakeVendors) FindByVendorID(_ context.Context, vendorID string) (*models.VendorRecord, error) {
	if f.err != nil {
		return nil, stderrors.NewVendorStoreError(f.err)
	}
	if rec, ok := f.records[vendorID]; ok {
		return &rec, nil
	}
	return nil, nil
}

type fakeInvoices struct {
	records map[string]models.InvoiceRecord
	err     error
}

func (f *fakeInvoices) FindByInvoiceID(_ context.Context, invoiceID string) (*models.InvoiceRecord, error) {
	if f.err != nil {
		return nil, stderrors.NewInvoiceStoreError(f.err)
	}
	if rec, ok := f.records[invoiceID]; ok {
		return &rec, nil
	}
	return nil, nil
}

type fakeFAQs struct {
	records []models.FAQRecord
	err     error
}

func (f *fakeFAQs) AllQuestions(_ context.Context) ([]models.FAQRecord, error) {
	if f.err != nil {
		return nil, stderrors.NewFAQStoreError(f.err)
	}
	return f.records, nil
}

type fakeTranscripts struct {
	messages map[string][]models.Message
	states   map[string]models.ConversationState
	err      error
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{
		messages: make(map[string][]models.Message),
		states:   make(map[string]models.ConversationState),
	}
}

func (f *fakeTranscripts) AppendUser(_ context.Context, conversationID, text string) error {
	if f.err != nil {
		return stderrors.NewTranscriptStoreError(f.err)
	}
	f.messages[conversationID] = append(f.messages[conversationID], models.Message{Sender: models.SenderUser, Text: text})
	return nil
}

func (f *fakeTranscripts) AppendBot(_ context.Context, conversationID string, replies []string, state models.ConversationState) error {
	if f.err != nil {
		return stderrors.NewTranscriptStoreError(f.err)
	}
	for _, reply := range replies {
		f.messages[conversationID] = append(f.messages[conversationID], models.Message{Sender: models.SenderBot, Text: reply})
	}
	f.states[conversationID] = state
	return nil
}

func (f *fakeTranscripts) State(_ context.Context, conversationID string) (models.ConversationState, error) {
	if f.err != nil {
		return "", stderrors.NewTranscriptStoreError(f.err)
	}
	if state, ok := f.states[conversationID]; ok {
		return state, nil
	}
	return models.StateAwaitingTopic, nil
}

func (f *fakeTranscripts) LatestUserMatch(_ context.Context, conversationID string, re *regexp.Regexp) (string, bool, error) {
	if f.err != nil {
		return "", false, stderrors.NewTranscriptStoreError(f.err)
	}
	msgs := f.messages[conversationID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender != models.SenderUser {
			continue
		}
		if m := re.FindStringSubmatch(msgs[i].Text); m != nil {
			if len(m) > 1 {
				return m[1], true, nil
			}
			return m[0], true, nil
		}
	}
	return "", false, nil
}

func (f *fakeTranscripts) Clear(_ context.Context, conversationID string) error {
	if f.err != nil {
		return stderrors.NewTranscriptStoreError(f.err)
	}
	delete(f.messages, conversationID)
	delete(f.states, conversationID)
	return nil
}

type fakeNotifier struct {
	escalations []string
	transfers   []string
}

func (f *fakeNotifier) EscalateUnresolved(_ context.Context, conversationID string) {
	f.escalations = append(f.escalations, conversationID)
}

func (f *fakeNotifier) AlertTransfer(_ context.Context, conversationID, _ string) {
	f.transfers = append(f.transfers, conversationID)
}

type harness struct {
	router      *Router
	vendors     *fakeVendors
	invoices    *fakeInvoices
	faqs        *fakeFAQs
	transcripts *fakeTranscripts
	notifier    *fakeNotifier
}

func newHarness() *harness {
	h := &harness{
		vendors: &fakeVendors{records: map[string]models.VendorRecord{
			"V001": {VendorID: "V001", Name: "Testing A", RegistrationStatus: "active", PerformanceRating: "5 star *****"},
		}},
		invoices: &fakeInvoices{records: map[string]models.InvoiceRecord{
			"VEN34562": {InvoiceID: "VEN34562", Name: "Testing A", Status: "active", Amount: 70000, DueDate: "2025-04-30"},
		}},
		faqs:        &fakeFAQs{},
		transcripts: newFakeTranscripts(),
		notifier:    &fakeNotifier{},
	}
	h.router = New(Deps{
		Vendors:     h.vendors,
		Invoices:    h.invoices,
		FAQs:        h.faqs,
		Transcripts: h.transcripts,
		Notifier:    h.notifier,
		Config: config.ChatConfig{
			FAQThreshold:      0.65,
			TransferThreshold: 0.65,
			SupportEmail:      "support@orane.in",
		},
		Logger: logger.NewNoOpLogger(),
	})
	return h
}

// --- Vendor branch ---

func TestRouteVendorFound(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "V001")
	require.NoError(t, err)
	assert.Equal(t, []string{"Select vendor detail to view:"}, res.Replies)
	assert.Equal(t, "vendor_lookup", res.Branch)
	assert.Equal(t, models.StateAwaitingVendorDetailChoice, res.State)

	msgs := h.transcripts.messages["conv-1"]
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, models.SenderBot, msgs[1].Sender)
}

func TestRouteVendorNotFound(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "V999")
	require.NoError(t, err)
	assert.Equal(t, []string{"⚠️ Vendor V999 not found."}, res.Replies)
	assert.Equal(t, models.StateAwaitingTopic, res.State)
}

func TestRouteVendorIDLowercaseBounded(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "my id is v001 thanks")
	require.NoError(t, err)
	assert.Equal(t, "vendor_lookup", res.Branch)
	assert.Equal(t, []string{"Select vendor detail to view:"}, res.Replies)
}

func TestRouteVendorPrecedesInvoice(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "V001 Ven123")
	require.NoError(t, err)
	assert.Equal(t, "vendor_lookup", res.Branch)
}

// --- Vendor detail branch ---

func TestRouteVendorDetailFlow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.router.Route(ctx, "conv-1", "V001")
	require.NoError(t, err)

	res, err := h.router.Route(ctx, "conv-1", "registration status")
	require.NoError(t, err)
	assert.Equal(t, "vendor_detail", res.Branch)
	assert.Equal(t, []string{
		"📋 Registration Status: active",
		"Have I resolved your query?",
	}, res.Replies)
	assert.Equal(t, models.StateAwaitingResolutionConfirm, res.State)
}

func TestRouteVendorDetailUsesLatestVendorID(t *testing.T) {
	h := newHarness()
	h.vendors.records["V002"] = models.VendorRecord{VendorID: "V002", PerformanceRating: "3 star ***"}
	ctx := context.Background()

	_, err := h.router.Route(ctx, "conv-1", "V001")
	require.NoError(t, err)
	_, err = h.router.Route(ctx, "conv-1", "V002")
	require.NoError(t, err)

	res, err := h.router.Route(ctx, "conv-1", "performance rating")
	require.NoError(t, err)
	assert.Equal(t, "⭐ Performance Rating: 3 star ***", res.Replies[0])
}

func TestRouteVendorDetailWithoutVendor(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "profile details")
	require.NoError(t, err)
	assert.Equal(t, []string{"⚠️ Please provide your Vendor ID first."}, res.Replies)
	assert.Equal(t, models.StateAwaitingTopic, res.State)
}

// --- New chat / continuation ---

func TestRouteNewChatLiteralResets(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.router.Route(ctx, "conv-1", "V001")
	require.NoError(t, err)

	res, err := h.router.Route(ctx, "conv-1", "new chat")
	require.NoError(t, err)
	assert.Equal(t, "new_chat", res.Branch)
	assert.Contains(t, res.Replies[0], "Welcome to Orane's Vendor Portal")

	// Only the welcome reply survives the reset.
	msgs := h.transcripts.messages["conv-1"]
	require.Len(t, msgs, 1)
	assert.Equal(t, models.SenderBot, msgs[0].Sender)
}

func TestRouteSlashNewChatKeepsTranscript(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.router.Route(ctx, "conv-1", "V001")
	require.NoError(t, err)

	res, err := h.router.Route(ctx, "conv-1", "/newchat")
	require.NoError(t, err)
	assert.Equal(t, "new_chat", res.Branch)
	assert.Contains(t, res.Replies[0], "Welcome to Orane's Vendor Portal")
	assert.Len(t, h.transcripts.messages["conv-1"], 4)
}

func TestRouteStartOverResets(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.router.Route(ctx, "conv-1", "hello")
	require.NoError(t, err)

	res, err := h.router.Route(ctx, "conv-1", "start over")
	require.NoError(t, err)
	assert.Equal(t, "continuation", res.Branch)
	assert.Contains(t, res.Replies[0], "Welcome to Orane's Vendor Portal")
	assert.Len(t, h.transcripts.messages["conv-1"], 1)
}

func TestRouteContinue(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "yes, continue")
	require.NoError(t, err)
	assert.Equal(t, "continuation", res.Branch)
	assert.Equal(t, []string{"Okay, please tell me how can I help you further. Please choose an option below:"}, res.Replies)
	assert.Equal(t, models.StateAwaitingTopic, res.State)
}

// --- Resolution confirmation ---

func resolutionState(t *testing.T, h *harness) {
	t.Helper()
	_, err := h.router.Route(context.Background(), "conv-1", "Ven99999")
	require.NoError(t, err)
	require.Equal(t, models.StateAwaitingResolutionConfirm, h.transcripts.states["conv-1"])
}

func TestRouteResolutionYes(t *testing.T) {
	h := newHarness()
	resolutionState(t, h)

	res, err := h.router.Route(context.Background(), "conv-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, "resolution_confirm", res.Branch)
	assert.Equal(t, []string{"🎉 Great to hear! Type 'new chat' or '/newchat' to start a new conversation."}, res.Replies)
	assert.Equal(t, models.StateAwaitingTopic, res.State)
	assert.Empty(t, h.notifier.escalations)
}

func TestRouteResolutionNo(t *testing.T) {
	h := newHarness()
	resolutionState(t, h)

	res, err := h.router.Route(context.Background(), "conv-1", "no")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Please drop us a mail at support@orane.in. We will connect with you shortly.",
		"Do you want to continue this chat or want to start a new chat?",
	}, res.Replies)
	assert.Equal(t, models.StateAwaitingContinuationChoice, res.State)
	assert.True(t, res.Escalated)
	assert.Equal(t, []string{"conv-1"}, h.notifier.escalations)
}

func TestRouteResolutionOkCountsAsYes(t *testing.T) {
	h := newHarness()
	resolutionState(t, h)

	res, err := h.router.Route(context.Background(), "conv-1", "ok")
	require.NoError(t, err)
	assert.Equal(t, "resolution_confirm", res.Branch)
	assert.Contains(t, res.Replies[0], "Great to hear")
}

func TestRouteResolutionUnrecognizedFallsThrough(t *testing.T) {
	h := newHarness()
	resolutionState(t, h)

	res, err := h.router.Route(context.Background(), "conv-1", "rfq")
	require.NoError(t, err)
	assert.Equal(t, "rfq", res.Branch)
}

func TestRouteResolutionConfirmOnlyInState(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "yes")
	require.NoError(t, err)
	assert.NotEqual(t, "resolution_confirm", res.Branch)
}

// --- RFQ ---

func TestRouteRFQ(t *testing.T) {
	cases := []struct {
		utterance string
		contains  string
	}{
		{"rfq", "Please select an RFQ-related option:"},
		{"What is RFQ?", "Request for Quotation"},
		{"bid status", "currently under review"},
		{"Bid Shortlist Status", "has been shortlisted"},
		{"rfq payment terms", "Net 30 days"},
	}
	for _, tc := range cases {
		t.Run(tc.utterance, func(t *testing.T) {
			h := newHarness()
			res, err := h.router.Route(context.Background(), "conv-1", tc.utterance)
			require.NoError(t, err)
			assert.Equal(t, "rfq", res.Branch)
			require.Len(t, res.Replies, 1)
			assert.Contains(t, res.Replies[0], tc.contains)
		})
	}
}

// --- Intents and transfer ---

func TestRouteIntents(t *testing.T) {
	cases := []struct {
		utterance string
		contains  string
	}{
		{"hello", "Hello! How can I assist you today?"},
		{"hlo", "Hello! How can I assist you today?"},
		{"bye", "Goodbye!"},
		{"thx", "Goodbye!"},
		{"okay", "Noted!"},
		{"sry", "No worries!"},
		{"np", "Happy to help!"},
	}
	for _, tc := range cases {
		t.Run(tc.utterance, func(t *testing.T) {
			h := newHarness()
			res, err := h.router.Route(context.Background(), "conv-1", tc.utterance)
			require.NoError(t, err)
			assert.Equal(t, "intent", res.Branch)
			assert.Contains(t, res.Replies[0], tc.contains)
			assert.False(t, res.Transfer)
		})
	}
}

func TestRouteTransferIntent(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "agent")
	require.NoError(t, err)
	assert.Equal(t, "intent", res.Branch)
	assert.True(t, res.Transfer)
	assert.Contains(t, res.Replies[0], "Transferring to a team member")
	assert.Equal(t, []string{"conv-1"}, h.notifier.transfers)
}

func TestRouteTransferFallbackHandlesTypos(t *testing.T) {
	for _, utterance := range []string{"connect me to support", "conect me to suport"} {
		t.Run(utterance, func(t *testing.T) {
			h := newHarness()
			res, err := h.router.Route(context.Background(), "conv-1", utterance)
			require.NoError(t, err)
			assert.Equal(t, "transfer", res.Branch)
			assert.True(t, res.Transfer)
			assert.Equal(t, []string{"conv-1"}, h.notifier.transfers)
		})
	}
}

// --- Invoice branch ---

func TestRouteInvoiceFound(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "Ven34562")
	require.NoError(t, err)
	assert.Equal(t, "invoice", res.Branch)
	require.Len(t, res.Replies, 2)
	assert.Contains(t, res.Replies[0], "📄 Invoice Details: VEN34562")
	assert.Contains(t, res.Replies[0], "₹70,000")
	assert.Equal(t, "Have I resolved your query?", res.Replies[1])
	assert.Equal(t, models.StateAwaitingResolutionConfirm, res.State)
}

func TestRouteInvoiceNotFound(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "Ven12345")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"⚠️ Invoice VEN12345 not found.",
		"Have I resolved your query?",
	}, res.Replies)
}

func TestRouteInvoiceLengthError(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "Ven123")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"⚠️ Incomplete ID (VEN123). Must be 5 digits.\nExample: Ven12345",
		"Have I resolved your query?",
	}, res.Replies)
	assert.Equal(t, models.StateAwaitingResolutionConfirm, res.State)
}

func TestRouteInvoiceFormatError(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "Inv123")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"⚠️ Invalid format (INV123). Use 'Ven' + 5 digits.\nExample: Ven12345",
		"Have I resolved your query?",
	}, res.Replies)
}

// --- FAQ and invoice prompt ---

func TestRouteFAQMatch(t *testing.T) {
	h := newHarness()
	h.faqs.records = []models.FAQRecord{
		{Question: "How to changes profile details?", Answer: "Log in, go to Profile Settings, update details, save changes, and contact support if needed."},
		{Question: "What are the payment terms?", Answer: "Net 30 days from the date of invoice."},
	}

	res, err := h.router.Route(context.Background(), "conv-1", "How to changes profile details?")
	require.NoError(t, err)
	assert.Equal(t, "faq", res.Branch)
	assert.Equal(t, []string{"Log in, go to Profile Settings, update details, save changes, and contact support if needed."}, res.Replies)
}

func TestRouteFAQBelowThreshold(t *testing.T) {
	h := newHarness()
	h.faqs.records = []models.FAQRecord{
		{Question: "How to changes profile details?", Answer: "Log in and update."},
	}

	res, err := h.router.Route(context.Background(), "conv-1", "weather today")
	require.NoError(t, err)
	assert.NotEqual(t, "faq", res.Branch)
	assert.Equal(t, "fallback", res.Branch)
}

func TestRouteInvoicePrompt(t *testing.T) {
	for _, utterance := range []string{"where is my invoice", "I want to check my bill"} {
		t.Run(utterance, func(t *testing.T) {
			h := newHarness()
			res, err := h.router.Route(context.Background(), "conv-1", utterance)
			require.NoError(t, err)
			assert.Equal(t, "invoice_prompt", res.Branch)
			assert.Equal(t, []string{"📄 Please provide your invoice ID (e.g., Ven12345)."}, res.Replies)
		})
	}
}

func TestRouteFallback(t *testing.T) {
	h := newHarness()

	res, err := h.router.Route(context.Background(), "conv-1", "xyzzy")
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Branch)
	assert.Equal(t, []string{"👋 Hello! How can I assist you today? Please choose an option below:"}, res.Replies)
}

// --- Errors ---

func TestRouteEmptyMessage(t *testing.T) {
	h := newHarness()

	_, err := h.router.Route(context.Background(), "conv-1", "   ")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeEmptyMessage, stderrors.AsStandard(err).Code)
	assert.Empty(t, h.transcripts.messages["conv-1"])
}

func TestRouteVendorStoreFailure(t *testing.T) {
	h := newHarness()
	h.vendors.err = errors.New("connection refused")

	res, err := h.router.Route(context.Background(), "conv-1", "V001")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, []string{"⚠️ Error processing request."}, res.Replies)
	assert.Equal(t, "error", res.Branch)
}

func TestRouteTranscriptStoreFailure(t *testing.T) {
	h := newHarness()
	h.transcripts.err = errors.New("redis down")

	res, err := h.router.Route(context.Background(), "conv-1", "hello")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, []string{"⚠️ Error processing request."}, res.Replies)
}

// --- Conversation isolation ---

func TestRouteConversationsIsolated(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.router.Route(ctx, "conv-1", "V001")
	require.NoError(t, err)

	res, err := h.router.Route(ctx, "conv-2", "registration status")
	require.NoError(t, err)
	assert.Equal(t, []string{"⚠️ Please provide your Vendor ID first."}, res.Replies)
}
