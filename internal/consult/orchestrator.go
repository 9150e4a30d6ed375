package consult

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emastro/vitalia/internal/generation"
	"github.com/emastro/vitalia/internal/knowledge"
	"github.com/emastro/vitalia/internal/medication"
	"github.com/emastro/vitalia/internal/observability"
	"github.com/emastro/vitalia/internal/profile"
	"github.com/emastro/vitalia/internal/safety"
	"github.com/emastro/vitalia/internal/session"
	"github.com/emastro/vitalia/internal/symptoms"
	"github.com/emastro/vitalia/internal/translation"
	"github.com/emastro/vitalia/internal/triage"
)

// StageObserver receives each stage record the moment it is written. Used by
// the websocket transport to stream pipeline progress.
type StageObserver func(conversationID, turnID string, rec StageRecord)

// Options are the orchestrator's turn-level knobs, all sourced from config.
type Options struct {
	RetrievalTopK      int
	ProfileTimeout     time.Duration
	GenerationTimeout  time.Duration
	TranslationTimeout time.Duration
	MedicationTimeout  time.Duration
	PersistTimeout     time.Duration
	DefaultLanguage    string
	TranslationEnabled bool
	PersistenceEnabled bool
	MedicationEnabled  bool
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Sessions    *session.Manager
	Retriever   *knowledge.Retriever
	Backend     generation.Backend
	Translator  translation.Translator
	Store       profile.Store
	Medications medication.Source
	Metrics     *observability.Metrics
	Logger      *log.Logger
}

// Orchestrator drives the deterministic decision pipeline around the text
// backend. The backend only ever writes prose: triage, safety, and routing
// decisions are made here, before and after it runs.
type Orchestrator struct {
	sessions   *session.Manager
	aggregator *symptoms.Aggregator
	retriever  *knowledge.Retriever
	backend    generation.Backend
	translator translation.Translator
	store      profile.Store
	meds       medication.Source
	metrics    *observability.Metrics
	logger     *log.Logger
	opts       Options
}

func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if opts.RetrievalTopK <= 0 {
		opts.RetrievalTopK = 3
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	return &Orchestrator{
		sessions:   deps.Sessions,
		aggregator: symptoms.NewAggregator(deps.Sessions),
		retriever:  deps.Retriever,
		backend:    deps.Backend,
		translator: deps.Translator,
		store:      deps.Store,
		meds:       deps.Medications,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		opts:       opts,
	}
}

// HandleTurn runs one patient message through the full pipeline.
func (o *Orchestrator) HandleTurn(ctx context.Context, req Request) (*Response, error) {
	return o.HandleTurnObserved(ctx, req, nil)
}

// HandleTurnObserved is HandleTurn with per-stage progress callbacks.
func (o *Orchestrator) HandleTurnObserved(ctx context.Context, req Request, obs StageObserver) (*Response, error) {
	start := time.Now()
	turnID := uuid.NewString()

	if err := o.sessions.BeginTurn(req.ConversationID, turnID); err != nil {
		return nil, err
	}
	defer o.sessions.FinishTurn(req.ConversationID, turnID)

	conv, err := o.sessions.Get(req.ConversationID)
	if err != nil {
		return nil, err
	}

	if err := o.sessions.AppendTurn(req.ConversationID, session.Turn{
		TurnID: turnID,
		Role:   session.RoleUser,
		Text:   req.Text,
	}); err != nil {
		return nil, err
	}

	t := &turnRun{
		o: o,
		resp: &Response{
			ConversationID: req.ConversationID,
			TurnID:         turnID,
			Language:       o.targetLanguage(req, conv),
		},
		obs: obs,
	}
	resp := t.resp

	// INTAKE: extraction failure costs this turn's delta, never the turn.
	accumulated := conv.Symptoms
	t.run(StageIntake, func() {
		list, err := o.aggregator.Ingest(req.ConversationID, req.Text)
		if err != nil {
			o.logger.Printf("intake failed for conversation %s: %v", req.ConversationID, err)
			return
		}
		accumulated = list
	})
	resp.Symptoms = symptomStrings(accumulated)

	// PROFILE_LOAD: best effort under its own timeout.
	var patient *profile.Patient
	t.run(StageProfileLoad, func() {
		if o.store == nil || conv.PatientID == "" {
			return
		}
		pctx, cancel := context.WithTimeout(ctx, o.timeout(o.opts.ProfileTimeout))
		defer cancel()
		p, err := o.store.GetPatient(pctx, conv.PatientID)
		if err != nil {
			if !errors.Is(err, profile.ErrNotFound) {
				o.metrics.ProviderErrors.WithLabelValues("profile", "error").Inc()
				o.logger.Printf("profile load failed for patient %s: %v", conv.PatientID, err)
			}
			return
		}
		patient = p
	})

	// INTENT_CHECK: greetings and thanks never reach triage, but only while
	// no symptom has been mentioned in the whole conversation.
	fastReply := ""
	t.run(StageIntentCheck, func() {
		if len(accumulated) == 0 {
			fastReply = trivialReply(req.Text)
		}
	})
	if fastReply != "" {
		resp.Reply = fastReply
		resp.Safety = safety.Verdict{Action: safety.ActionAllow, SanitizedText: fastReply}
		t.skip(StageTriage, StageSafetyInput, StageRetrieval, StageGeneration, StageSafetyOutput)
		o.translateStage(ctx, t)
		t.skip(StagePersist)
		return o.finish(resp, start), nil
	}

	// TRIAGE
	age := req.Age
	if age == triage.AgeUnknown && patient != nil {
		age = triage.AgeGroup(patient.AgeGroup)
	}
	var triRes triage.Result
	t.run(StageTriage, func() {
		convText, err := o.sessions.UserText(req.ConversationID)
		if err != nil {
			convText = req.Text
		}
		triRes = triage.Classify(triage.Input{
			Symptoms:         accumulated,
			RawText:          req.Text,
			ConversationText: convText,
			Vitals:           req.Vitals,
			Age:              age,
			Duration:         req.Duration,
		})
	})
	resp.Triage = triRes

	// SAFETY_INPUT: redundant with the triage override on purpose. Either
	// signal escalates.
	inputEmergency := false
	escalationReason := ""
	t.run(StageSafetyInput, func() {
		inputEmergency, escalationReason = safety.CheckInput(req.Text)
	})
	if inputEmergency || triRes.Level == triage.LevelEmergency {
		source := "triage"
		if inputEmergency {
			source = "safety_input"
			// The phrase table is broader than the symptom weights. The
			// delivered level must match the escalation, not the weights.
			triRes = triage.ForceEmergency(triRes, fmt.Sprintf("emergency phrase detected: %q", escalationReason))
			resp.Triage = triRes
		}
		o.escalate(t, req, triRes, accumulated, inputEmergency, escalationReason, source)
		o.translateStage(ctx, t)
		o.persistStage(ctx, t, conv, req.Text)
		return o.finish(resp, start), nil
	}

	// RETRIEVAL: empty facts are a degradation, not a failure.
	var facts []knowledge.Fact
	t.run(StageRetrieval, func() {
		query := strings.TrimSpace(strings.Join(resp.Symptoms, " ") + " " + req.Text)
		facts = o.retriever.Retrieve(query, o.opts.RetrievalTopK)
	})
	resp.Facts = facts

	// GENERATION runs concurrently with the medication lookup; both are
	// joined before the stage ends so SAFETY_OUTPUT never sees a partial.
	model := generation.RouteModel(req.HasImage, false, triRes.Level == triage.LevelMentalHealth)
	draft := ""
	var meds []medication.Medication
	t.run(StageGeneration, func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			meds = o.lookupMedications(ctx, resp.Symptoms)
		}()

		gctx, cancel := context.WithTimeout(ctx, o.timeout(o.opts.GenerationTimeout))
		defer cancel()
		genResp, err := o.backend.Generate(gctx, generation.Request{
			ConversationID: req.ConversationID,
			TurnID:         turnID,
			PatientText:    req.Text,
			Symptoms:       resp.Symptoms,
			TriageLevel:    string(triRes.Level),
			Facts:          factStrings(facts),
			History:        historyLines(conv),
			Model:          model,
			Language:       o.opts.DefaultLanguage,
		})
		if err != nil {
			o.metrics.ProviderErrors.WithLabelValues("generation", "error").Inc()
			o.logger.Printf("generation failed for conversation %s: %v", req.ConversationID, err)
			draft = apologyReply(triRes)
		} else {
			draft = genResp.Text
			resp.Model = genResp.Model
		}
		if resp.Model == "" {
			resp.Model = model
		}
		wg.Wait()
	})
	if patient != nil {
		meds = medication.AnnotateAllergies(meds, patient.Allergies)
	}
	resp.Medications = meds

	// SAFETY_OUTPUT always runs on whatever GENERATION produced.
	var verdict safety.Verdict
	t.run(StageSafetyOutput, func() {
		verdict = safety.CheckOutput(draft, req.Text, accumulated)
	})
	resp.Safety = verdict
	resp.Reply = verdict.SanitizedText
	o.metrics.SafetyActions.WithLabelValues(string(verdict.Action)).Inc()
	if verdict.EmergencyTriggered {
		resp.Escalated = true
		_ = o.sessions.MarkEscalated(req.ConversationID)
		o.metrics.EmergencyEscalations.WithLabelValues("safety_output").Inc()
	}

	o.translateStage(ctx, t)
	o.persistStage(ctx, t, conv, req.Text)
	return o.finish(resp, start), nil
}

// escalate replaces the reply with the fixed emergency template. Nothing that
// fails afterwards may suppress it.
func (o *Orchestrator) escalate(t *turnRun, req Request, triRes triage.Result, accumulated []symptoms.Symptom, inputEmergency bool, reason, source string) {
	resp := t.resp
	resp.Escalated = true
	_ = o.sessions.MarkEscalated(req.ConversationID)
	o.metrics.EmergencyEscalations.WithLabelValues(source).Inc()

	var verdict safety.Verdict
	if inputEmergency {
		// The validator assembles the template, including the crisis block
		// for self-harm content.
		verdict = safety.CheckOutput("", req.Text, accumulated)
	} else {
		if reason == "" {
			reason = "triage classified the case as an emergency"
		}
		verdict = safety.Verdict{
			Action:             safety.ActionEscalate,
			SanitizedText:      safety.EmergencyResourcesBlock,
			EmergencyTriggered: true,
			EscalationReason:   reason,
		}
	}
	if triRes.RecommendedAction != "" {
		verdict.SanitizedText = strings.TrimSpace(verdict.SanitizedText) + "\n\n" + triRes.RecommendedAction
	}
	resp.Safety = verdict
	resp.Reply = verdict.SanitizedText
	o.metrics.SafetyActions.WithLabelValues(string(verdict.Action)).Inc()
	t.skip(StageRetrieval, StageGeneration, StageSafetyOutput)
}

func (o *Orchestrator) lookupMedications(ctx context.Context, symptomNames []string) []medication.Medication {
	if o.meds == nil || !o.opts.MedicationEnabled || len(symptomNames) == 0 {
		return nil
	}
	mctx, cancel := context.WithTimeout(ctx, o.timeout(o.opts.MedicationTimeout))
	defer cancel()
	meds, err := o.meds.Lookup(mctx, symptomNames)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues("medication", "error").Inc()
		o.logger.Printf("medication lookup failed: %v", err)
		return nil
	}
	return meds
}

// translateStage translates the validated reply. Same-language turns skip the
// stage entirely; a provider failure leaves the source-language reply intact.
func (o *Orchestrator) translateStage(ctx context.Context, t *turnRun) {
	resp := t.resp
	if o.translator == nil || !o.opts.TranslationEnabled ||
		translation.SameLanguage(o.opts.DefaultLanguage, resp.Language) {
		t.skip(StageTranslation)
		return
	}
	t.run(StageTranslation, func() {
		tctx, cancel := context.WithTimeout(ctx, o.timeout(o.opts.TranslationTimeout))
		defer cancel()
		translated, err := o.translator.Translate(tctx, resp.Reply, o.opts.DefaultLanguage, resp.Language)
		if err != nil {
			o.metrics.ProviderErrors.WithLabelValues("translation", "error").Inc()
			o.logger.Printf("translation failed for conversation %s: %v", resp.ConversationID, err)
			return
		}
		resp.TranslatedReply = translated
	})
}

// persistStage records the consultation on a context detached from the
// caller's. A dropped connection must not lose the symptom history.
func (o *Orchestrator) persistStage(ctx context.Context, t *turnRun, conv *session.Conversation, userText string) {
	resp := t.resp
	if o.store == nil || !o.opts.PersistenceEnabled || conv.PatientID == "" {
		t.skip(StagePersist)
		return
	}
	t.run(StagePersist, func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout(o.opts.PersistTimeout))
		defer cancel()
		summary, redacted := profile.RedactPII(fmt.Sprintf("patient: %s\nassistant: %s", userText, resp.Reply))
		err := o.store.RecordConsultation(pctx, profile.Consultation{
			PatientID:      conv.PatientID,
			ConversationID: resp.ConversationID,
			TurnID:         resp.TurnID,
			Symptoms:       resp.Symptoms,
			TriageLevel:    string(resp.Triage.Level),
			Summary:        summary,
			Escalated:      resp.Escalated,
			PIIRedacted:    redacted,
		})
		if err != nil {
			o.metrics.ProviderErrors.WithLabelValues("persist", "error").Inc()
			o.logger.Printf("persist failed for conversation %s: %v", resp.ConversationID, err)
		}
	})
}

func (o *Orchestrator) finish(resp *Response, start time.Time) *Response {
	reply := resp.TranslatedReply
	if reply == "" {
		reply = resp.Reply
	}
	_ = o.sessions.AppendTurn(resp.ConversationID, session.Turn{
		TurnID:      resp.TurnID,
		Role:        session.RoleAssistant,
		Text:        reply,
		TriageLevel: string(resp.Triage.Level),
	})
	resp.ProcessingTime = time.Since(start)
	level := string(resp.Triage.Level)
	if level == "" {
		level = "none"
	}
	o.metrics.ObserveTurn(level, resp.ProcessingTime)
	return resp
}

func (o *Orchestrator) targetLanguage(req Request, conv *session.Conversation) string {
	if lang := strings.TrimSpace(req.Language); lang != "" {
		return lang
	}
	if conv.Language != "" {
		return conv.Language
	}
	return o.opts.DefaultLanguage
}

func (o *Orchestrator) timeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// turnRun carries the per-turn stage record plumbing.
type turnRun struct {
	o    *Orchestrator
	resp *Response
	obs  StageObserver
}

func (t *turnRun) run(name string, fn func()) {
	start := time.Now()
	fn()
	rec := StageRecord{Stage: name, Ran: true, Elapsed: time.Since(start)}
	t.resp.Stages = append(t.resp.Stages, rec)
	t.o.metrics.ObserveStage(name, rec.Elapsed)
	if t.obs != nil {
		t.obs(t.resp.ConversationID, t.resp.TurnID, rec)
	}
}

func (t *turnRun) skip(names ...string) {
	for _, name := range names {
		rec := StageRecord{Stage: name}
		t.resp.Stages = append(t.resp.Stages, rec)
		if t.obs != nil {
			t.obs(t.resp.ConversationID, t.resp.TurnID, rec)
		}
	}
}

func symptomStrings(list []symptoms.Symptom) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return out
}

func factStrings(facts []knowledge.Fact) []string {
	if len(facts) == 0 {
		return nil
	}
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Content + " (" + f.Citation + ")"
	}
	return out
}

// historyLines renders the prior conversation for the backend prompt.
func historyLines(conv *session.Conversation) []string {
	if len(conv.Turns) == 0 {
		return nil
	}
	out := make([]string, 0, len(conv.Turns))
	for _, turn := range conv.Turns {
		out = append(out, string(turn.Role)+": "+turn.Text)
	}
	return out
}

func apologyReply(triRes triage.Result) string {
	var b strings.Builder
	b.WriteString("I'm sorry, I couldn't put together a full reply just now.")
	if triRes.RecommendedAction != "" {
		b.WriteString(" Based on what you've told me: ")
		b.WriteString(triRes.RecommendedAction)
	}
	return b.String()
}

// trivialReply answers pure greetings, thanks, and goodbyes without running
// the clinical pipeline. Returns "" when the message is anything more.
func trivialReply(text string) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.Trim(norm, ".!?, ")
	if norm == "" || len(strings.Fields(norm)) > 4 {
		return ""
	}
	switch {
	case matchesAny(norm, "hi", "hello", "hey", "hiya", "good morning", "good afternoon", "good evening"):
		return "Hello! I'm here to help you think through any health concerns. What's bothering you today?"
	case matchesAny(norm, "thanks", "thank you", "thanks a lot", "thank you so much", "ty"):
		return "You're welcome. If anything else comes up, I'm here."
	case matchesAny(norm, "bye", "goodbye", "see you", "bye bye", "take care"):
		return "Take care of yourself. Come back any time you have a health question."
	default:
		return ""
	}
}

func matchesAny(norm string, phrases ...string) bool {
	for _, p := range phrases {
		if norm == p || strings.HasPrefix(norm, p+" ") || strings.HasSuffix(norm, " "+p) {
			return true
		}
	}
	return false
}
