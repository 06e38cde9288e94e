// Package router resolves each utterance to an ordered reply batch through a
// strict priority cascade over the conversation's explicit dialogue state.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"vendor-portal-chatbot/internal/chat/format"
	"vendor-portal-chatbot/internal/common/config"
	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/common/metrics"
	"vendor-portal-chatbot/internal/models"
	"vendor-portal-chatbot/internal/nlu/entity"
	"vendor-portal-chatbot/internal/nlu/fuzzy"
	"vendor-portal-chatbot/internal/nlu/lexicon"
	"vendor-portal-chatbot/internal/nlu/normalizer"
	"vendor-portal-chatbot/internal/nlu/transfer"
)

// Collaborator contracts. The router only reads vendor/invoice/FAQ data; the
// transcript store is the one surface it writes to.
type VendorStore interface {
	FindByVendorID(ctx context.Context, vendorID string) (*models.VendorRecord, error)
}

type InvoiceStore interface {
	FindByInvoiceID(ctx context.Context, invoiceID string) (*models.InvoiceRecord, error)
}

type FAQStore interface {
	AllQuestions(ctx context.Context) ([]models.FAQRecord, error)
}

type TranscriptStore interface {
	AppendUser(ctx context.Context, conversationID, text string) error
	AppendBot(ctx context.Context, conversationID string, replies []string, state models.ConversationState) error
	State(ctx context.Context, conversationID string) (models.ConversationState, error)
	LatestUserMatch(ctx context.Context, conversationID string, re *regexp.Regexp) (string, bool, error)
	Clear(ctx context.Context, conversationID string) error
}

// Notifier delivers best-effort escalation signals; implementations log their
// own failures and never return them.
type Notifier interface {
	EscalateUnresolved(ctx context.Context, conversationID string)
	AlertTransfer(ctx context.Context, conversationID, utterance string)
}

// Canned reply texts.
const (
	replyWelcome          = "👋 Welcome to Orane's Vendor Portal! How can I help you today? Please choose an option below:"
	replyGreeting         = "👋 Hello! How can I assist you today? Please choose an option below:"
	replyFarewell         = "👋 Goodbye! Type 'new chat' to start a new session later."
	replyConfirmation     = "✅ Noted! What else can I help you with?"
	replyApology          = "🤗 No worries! How can I assist you?"
	replyAcknowledgement  = "😊 Happy to help! What's next?"
	replyTransfer         = "🔗 Transferring to a team member... Please stay online.\n\nType 'new chat' to start over."
	replySelectDetail     = "Select vendor detail to view:"
	replyProvideVendorID  = "⚠️ Please provide your Vendor ID first."
	replyResolutionPrompt = "Have I resolved your query?"
	replyClosing          = "🎉 Great to hear! Type 'new chat' or '/newchat' to start a new conversation."
	replyContinuation     = "Do you want to continue this chat or want to start a new chat?"
	replyContinue         = "Okay, please tell me how can I help you further. Please choose an option below:"
	replyInvoicePrompt    = "📄 Please provide your invoice ID (e.g., Ven12345)."
	replyProcessingError  = "⚠️ Error processing request."

	replyRFQMenu      = "Please select an RFQ-related option:"
	replyRFQWhat      = "RFQ (Request for Quotation) is a business process in which a company requests price quotes from suppliers for specific products or services."
	replyBidStatus    = "Your bid status is currently under review. We will notify you once a decision has been made."
	replyBidShortlist = "Your bid has been shortlisted. Congratulations! We will contact you soon for the next steps."
	replyPaymentTerms = "Our standard payment terms are Net 30 days from the date of invoice. Please contact us for any special arrangements."
)

var (
	newChatRE        = regexp.MustCompile(`(?i)/newchat|new\s+chat`)
	literalNewChatRE = regexp.MustCompile(`(?i)new\s+chat`)
	yesLikeRE        = regexp.MustCompile(`yes|yeah|yep|sure|yup|ok`)
	noLikeRE         = regexp.MustCompile(`no|nope|not|nah|negative`)
	continueRE       = regexp.MustCompile(`(?i)yes,? continue|continue`)
	restartRE        = regexp.MustCompile(`(?i)new chat|start over`)
	wordTokenRE      = regexp.MustCompile(`[a-z0-9]+`)
)

var rfqReplies = map[string]string{
	"rfq":                  replyRFQMenu,
	"what is rfq?":         replyRFQWhat,
	"bid status":           replyBidStatus,
	"bid shortlist status": replyBidShortlist,
	"rfq payment terms":    replyPaymentTerms,
}

var invoiceKeywords = map[string]struct{}{
	"invoice": {}, "status": {}, "track": {}, "check": {}, "payment": {}, "bill": {},
	"due": {}, "amount": {}, "pay": {}, "balance": {}, "outstanding": {},
}

var invoicePhrases = []string{
	"where is my invoice", "check invoice status", "where is my bill",
	"track my invoice", "outstanding balance",
}

// turn bundles everything a branch needs about the current utterance.
type turn struct {
	conversationID string
	raw            string
	lowered        string
	normalized     string
	state          models.ConversationState
	vendorID       string
	hasVendor      bool
}

// decision is the pure outcome of the cascade: the reply batch, the state the
// conversation moves to, and the side effects the effectful step must apply.
type decision struct {
	replies  []string
	state    models.ConversationState
	reset    bool
	escalate bool
	transfer bool
}

// branch is one step of the cascade. A nil decision means "not mine, try the
// next branch"; branch order is the single source of routing priority.
type branch struct {
	name string
	run  func(ctx context.Context, t *turn) (*decision, error)
}

// Result is what one routed utterance produced.
type Result struct {
	Replies   []string
	Branch    string
	State     models.ConversationState
	Transfer  bool
	Escalated bool
	Failed    bool
}

type Router struct {
	vendors     VendorStore
	invoices    InvoiceStore
	faqs        FAQStore
	transcripts TranscriptStore
	notifier    Notifier
	cfg         config.ChatConfig
	logger      logger.Logger

	lexicons *lexicon.Lexicons
	detector *transfer.Detector
	branches []branch
}

// Deps carries the router's collaborators. Notifier may be nil.
type Deps struct {
	Vendors     VendorStore
	Invoices    InvoiceStore
	FAQs        FAQStore
	Transcripts TranscriptStore
	Notifier    Notifier
	Config      config.ChatConfig
	Logger      logger.Logger
}

func New(deps Deps) *Router {
	lexicons := lexicon.New()
	r := &Router{
		vendors:     deps.Vendors,
		invoices:    deps.Invoices,
		faqs:        deps.FAQs,
		transcripts: deps.Transcripts,
		notifier:    deps.Notifier,
		cfg:         deps.Config,
		logger:      deps.Logger.With(map[string]interface{}{"component": "router"}),
		lexicons:    lexicons,
		detector:    transfer.NewDetector(lexicons.Transfers, deps.Config.TransferThreshold),
	}
	r.branches = []branch{
		{"vendor_lookup", r.vendorLookup},
		{"vendor_detail", r.vendorDetail},
		{"new_chat", r.newChat},
		{"resolution_confirm", r.resolutionConfirm},
		{"continuation", r.continuation},
		{"rfq", r.rfq},
		{"intent", r.intent},
		{"transfer", r.transferFallback},
		{"invoice", r.invoice},
		{"faq", r.faq},
		{"invoice_prompt", r.invoicePrompt},
		{"fallback", r.fallback},
	}
	return r
}

// Route processes one utterance end to end: it appends the user message,
// runs the cascade, persists the reply batch with the next conversation
// state, and fires any escalation notifications. Collaborator failures are
// absorbed into a single generic apology batch; the only error returned is
// the empty-utterance rejection.
func (r *Router) Route(ctx context.Context, conversationID, utterance string) (Result, error) {
	start := time.Now()

	clean := strings.TrimSpace(utterance)
	if clean == "" {
		return Result{}, stderrors.NewEmptyMessageError()
	}

	if err := r.transcripts.AppendUser(ctx, conversationID, clean); err != nil {
		return r.failure(ctx, conversationID, err), nil
	}

	state, err := r.transcripts.State(ctx, conversationID)
	if err != nil {
		return r.failure(ctx, conversationID, err), nil
	}

	t := &turn{
		conversationID: conversationID,
		raw:            clean,
		lowered:        strings.ToLower(clean),
		normalized:     normalizer.Normalize(clean),
		state:          state,
	}
	t.vendorID, t.hasVendor = entity.VendorID(clean)

	d, name, err := r.decide(ctx, t)
	if err != nil {
		return r.failure(ctx, conversationID, err), nil
	}

	if d.reset {
		if err := r.transcripts.Clear(ctx, conversationID); err != nil {
			return r.failure(ctx, conversationID, err), nil
		}
	}
	if err := r.transcripts.AppendBot(ctx, conversationID, d.replies, d.state); err != nil {
		return r.failure(ctx, conversationID, err), nil
	}

	if d.transfer {
		metrics.TransfersDetected.Inc()
		if r.notifier != nil {
			r.notifier.AlertTransfer(ctx, conversationID, clean)
		}
	}
	if d.escalate && r.notifier != nil {
		r.notifier.EscalateUnresolved(ctx, conversationID)
	}

	metrics.MessagesRouted.WithLabelValues(name).Inc()
	metrics.RoutingDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	r.logger.Info("utterance routed", map[string]interface{}{
		"conversationId": conversationID,
		"branch":         name,
		"state":          string(d.state),
		"replies":        len(d.replies),
	})

	return Result{
		Replies:   d.replies,
		Branch:    name,
		State:     d.state,
		Transfer:  d.transfer,
		Escalated: d.escalate,
	}, nil
}

// decide runs the cascade without touching any store writes, so the routing
// logic stays testable in isolation.
func (r *Router) decide(ctx context.Context, t *turn) (*decision, string, error) {
	for _, b := range r.branches {
		d, err := b.run(ctx, t)
		if err != nil {
			return nil, b.name, err
		}
		if d != nil {
			return d, b.name, nil
		}
	}
	// The fallback branch always decides; reaching here would be a bug.
	return &decision{replies: []string{replyGreeting}, state: models.StateAwaitingTopic}, "fallback", nil
}

func (r *Router) failure(ctx context.Context, conversationID string, err error) Result {
	stdErr := stderrors.AsStandard(err)
	metrics.RoutingFailures.WithLabelValues(string(stdErr.Code)).Inc()
	r.logger.Error("routing failed", map[string]interface{}{
		"conversationId": conversationID,
		"errorCode":      string(stdErr.Code),
		"details":        stdErr.Details,
	})

	// Best effort: the failing collaborator may well be the transcript store.
	state, stateErr := r.transcripts.State(ctx, conversationID)
	if stateErr != nil {
		state = models.StateAwaitingTopic
	}
	_ = r.transcripts.AppendBot(ctx, conversationID, []string{replyProcessingError}, state)

	return Result{
		Replies: []string{replyProcessingError},
		Branch:  "error",
		State:   state,
		Failed:  true,
	}
}

// --- Cascade branches, in priority order ---

func (r *Router) vendorLookup(ctx context.Context, t *turn) (*decision, error) {
	if !t.hasVendor {
		return nil, nil
	}
	vendor, err := r.vendors.FindByVendorID(ctx, t.vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return &decision{
			replies: []string{fmt.Sprintf("⚠️ Vendor %s not found.", t.vendorID)},
			state:   models.StateAwaitingTopic,
		}, nil
	}
	return &decision{
		replies: []string{replySelectDetail},
		state:   models.StateAwaitingVendorDetailChoice,
	}, nil
}

func (r *Router) vendorDetail(ctx context.Context, t *turn) (*decision, error) {
	switch t.normalized {
	case format.DetailRegistrationStatus, format.DetailPerformanceRating, format.DetailProfileDetails:
	default:
		return nil, nil
	}

	vendorID, found, err := r.transcripts.LatestUserMatch(ctx, t.conversationID, entity.VendorIDPattern())
	if err != nil {
		return nil, err
	}
	if !found {
		return &decision{
			replies: []string{replyProvideVendorID},
			state:   models.StateAwaitingTopic,
		}, nil
	}

	vendorID = strings.ToUpper(vendorID)
	vendor, err := r.vendors.FindByVendorID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return &decision{
			replies: []string{fmt.Sprintf("⚠️ Vendor %s not found.", vendorID)},
			state:   models.StateAwaitingTopic,
		}, nil
	}
	return &decision{
		replies: []string{format.VendorDetail(t.normalized, *vendor), replyResolutionPrompt},
		state:   models.StateAwaitingResolutionConfirm,
	}, nil
}

// newChat greets on both command forms. The spelled-out "new chat" resets the
// transcript; the "/newchat" shortcut keeps it.
func (r *Router) newChat(_ context.Context, t *turn) (*decision, error) {
	if !newChatRE.MatchString(t.raw) {
		return nil, nil
	}
	return &decision{
		replies: []string{replyWelcome},
		state:   models.StateAwaitingTopic,
		reset:   literalNewChatRE.MatchString(t.raw),
	}, nil
}

func (r *Router) resolutionConfirm(_ context.Context, t *turn) (*decision, error) {
	if t.state != models.StateAwaitingResolutionConfirm {
		return nil, nil
	}
	if yesLikeRE.MatchString(t.lowered) {
		return &decision{
			replies: []string{replyClosing},
			state:   models.StateAwaitingTopic,
		}, nil
	}
	if noLikeRE.MatchString(t.lowered) {
		return &decision{
			replies:  []string{r.supportContactReply(), replyContinuation},
			state:    models.StateAwaitingContinuationChoice,
			escalate: true,
		}, nil
	}
	return nil, nil
}

func (r *Router) continuation(_ context.Context, t *turn) (*decision, error) {
	if continueRE.MatchString(t.raw) {
		return &decision{
			replies: []string{replyContinue},
			state:   models.StateAwaitingTopic,
		}, nil
	}
	if restartRE.MatchString(t.raw) {
		return &decision{
			replies: []string{replyWelcome},
			state:   models.StateAwaitingTopic,
			reset:   true,
		}, nil
	}
	return nil, nil
}

func (r *Router) rfq(_ context.Context, t *turn) (*decision, error) {
	reply, ok := rfqReplies[t.lowered]
	if !ok {
		return nil, nil
	}
	return &decision{
		replies: []string{reply},
		state:   models.StateAwaitingTopic,
	}, nil
}

func (r *Router) intent(_ context.Context, t *turn) (*decision, error) {
	var reply string
	switch r.lexicons.Classify(t.raw) {
	case lexicon.IntentGreeting:
		reply = replyGreeting
	case lexicon.IntentFarewell:
		reply = replyFarewell
	case lexicon.IntentConfirmation:
		reply = replyConfirmation
	case lexicon.IntentApology:
		reply = replyApology
	case lexicon.IntentAcknowledgement:
		reply = replyAcknowledgement
	case lexicon.IntentTransfer:
		return &decision{
			replies:  []string{replyTransfer},
			state:    models.StateAwaitingTopic,
			transfer: true,
		}, nil
	default:
		return nil, nil
	}
	return &decision{
		replies: []string{reply},
		state:   models.StateAwaitingTopic,
	}, nil
}

func (r *Router) transferFallback(_ context.Context, t *turn) (*decision, error) {
	if !r.detector.Detect(t.raw) {
		return nil, nil
	}
	return &decision{
		replies:  []string{replyTransfer},
		state:    models.StateAwaitingTopic,
		transfer: true,
	}, nil
}

func (r *Router) invoice(ctx context.Context, t *turn) (*decision, error) {
	match := entity.InvoiceID(t.raw)
	if match == nil || t.hasVendor {
		return nil, nil
	}

	if !match.Valid {
		var reply string
		if match.Reason == entity.ReasonLength {
			reply = fmt.Sprintf("⚠️ Incomplete ID (%s). Must be 5 digits.\nExample: Ven12345", match.ID)
		} else {
			reply = fmt.Sprintf("⚠️ Invalid format (%s). Use 'Ven' + 5 digits.\nExample: Ven12345", match.ID)
		}
		return &decision{
			replies: []string{reply, replyResolutionPrompt},
			state:   models.StateAwaitingResolutionConfirm,
		}, nil
	}

	invoice, err := r.invoices.FindByInvoiceID(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return &decision{
			replies: []string{fmt.Sprintf("⚠️ Invoice %s not found.", match.ID), replyResolutionPrompt},
			state:   models.StateAwaitingResolutionConfirm,
		}, nil
	}
	return &decision{
		replies: []string{format.Invoice(*invoice), replyResolutionPrompt},
		state:   models.StateAwaitingResolutionConfirm,
	}, nil
}

func (r *Router) faq(ctx context.Context, t *turn) (*decision, error) {
	faqs, err := r.faqs.AllQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if len(faqs) == 0 {
		return nil, nil
	}

	questions := make([]string, len(faqs))
	for i, f := range faqs {
		questions[i] = strings.ToLower(f.Question)
	}
	best := fuzzy.BestMatch(t.lowered, questions)
	if best.Index < 0 || best.Score <= r.faqThreshold() {
		return nil, nil
	}
	return &decision{
		replies: []string{faqs[best.Index].Answer},
		state:   models.StateAwaitingTopic,
	}, nil
}

func (r *Router) invoicePrompt(_ context.Context, t *turn) (*decision, error) {
	query := false
	for _, phrase := range invoicePhrases {
		if strings.Contains(t.lowered, phrase) {
			query = true
			break
		}
	}
	if !query {
		for _, token := range wordTokenRE.FindAllString(t.lowered, -1) {
			if _, ok := invoiceKeywords[token]; ok {
				query = true
				break
			}
		}
	}
	if !query {
		return nil, nil
	}
	return &decision{
		replies: []string{replyInvoicePrompt},
		state:   models.StateAwaitingTopic,
	}, nil
}

func (r *Router) fallback(_ context.Context, _ *turn) (*decision, error) {
	return &decision{
		replies: []string{replyGreeting},
		state:   models.StateAwaitingTopic,
	}, nil
}

func (r *Router) faqThreshold() float64 {
	if r.cfg.FAQThreshold > 0 {
		return r.cfg.FAQThreshold
	}
	return transfer.DefaultThreshold
}

func (r *Router) supportContactReply() string {
	email := r.cfg.SupportEmail
	if email == "" {
		email = "support@orane.in"
	}
	return fmt.Sprintf("Please drop us a mail at %s. We will connect with you shortly.", email)
}
