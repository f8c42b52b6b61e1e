package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/models"
	"github.com/ternarybob/regula/internal/services/collections"
	"github.com/ternarybob/regula/internal/services/documents"
	"github.com/ternarybob/regula/internal/services/extractor"
	"github.com/ternarybob/regula/internal/services/gate"
	"github.com/ternarybob/regula/internal/services/planner"
	"github.com/ternarybob/regula/internal/services/risk"
	"github.com/ternarybob/regula/internal/services/synthesizer"
	"github.com/ternarybob/regula/internal/services/workers"
)

// Orchestrator runs the assessment pipeline: optional upload registration,
// query planning, staged retrieval, the evidence gate, analysis, and
// synthesis. Retrieval failures degrade to empty results; only context
// cancellation aborts a request.
type Orchestrator struct {
	logger      arbor.ILogger
	planner     *planner.Planner
	gate        *gate.Gate
	extractor   *extractor.Extractor
	comparator  *risk.Comparator
	synthesizer *synthesizer.Synthesizer
	retrieval   interfaces.RetrievalService
	collections *collections.Service
	documents   *documents.Service
	events      interfaces.EventService
	pool        *workers.Pool
}

// New wires the assessment pipeline
func New(
	cfg *common.Config,
	retrievalService interfaces.RetrievalService,
	collectionsService *collections.Service,
	documentsService *documents.Service,
	eventService interfaces.EventService,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		logger:      logger,
		planner:     planner.New(logger),
		gate:        gate.New(logger),
		extractor:   extractor.New(logger),
		comparator:  risk.New(logger),
		synthesizer: synthesizer.New(logger, cfg.Assessment.CitationMaxRunes),
		retrieval:   retrievalService,
		collections: collectionsService,
		documents:   documentsService,
		events:      eventService,
		pool:        workers.NewPool(cfg.Assessment.MaxConcurrentCalls, logger),
	}
}

// Handle processes one user request end to end. upload may be nil.
func (o *Orchestrator) Handle(ctx context.Context, request string, upload *models.DocumentUpload) (*models.AssessmentResult, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, fmt.Errorf("request cannot be empty")
	}

	requestID := common.NewRequestID()
	o.publish(interfaces.EventAssessmentStarted, requestID, map[string]interface{}{
		"request": request,
	})

	outputs := &models.ComponentOutputs{Request: request}

	if upload != nil {
		note, err := o.registerUpload(ctx, request, upload)
		if err != nil {
			return nil, err
		}
		outputs.UploadNote = note
	}

	snapshot, err := o.collections.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections snapshot: %w", err)
	}

	plan := o.planner.Plan(request, snapshot.Kinds())
	o.publish(interfaces.EventPlanReady, requestID, map[string]interface{}{
		"intent":     string(plan.Intent),
		"regulation": plan.RegulationName,
		"calls":      len(plan.Calls),
	})

	results := o.runPlan(ctx, requestID, plan, snapshot, outputs)

	switch plan.Intent {
	case planner.IntentRiskAnalysis:
		o.runRiskAnalysis(plan, results, outputs)
	case planner.IntentDataGraph:
		o.runGraphExtraction(results, outputs)
	case planner.IntentCombined:
		o.runRiskAnalysis(plan, results, outputs)
		o.runGraphExtraction(results, outputs)
	}

	// Every retrieved result reaches the synthesizer regardless of intent so
	// its citations appear verbatim in the final output. Calls skipped by a
	// gate refusal have no result.
	for _, call := range plan.Calls {
		if result := results[call.CollectionKind]; result != nil {
			outputs.QueryResults = append(outputs.QueryResults, result)
		}
	}

	o.publish(interfaces.EventAnalysisCompleted, requestID, nil)

	result := o.synthesizer.Synthesize(outputs)

	o.publish(interfaces.EventAssessmentCompleted, requestID, map[string]interface{}{
		"suggested_questions": len(result.SuggestedQuestions),
	})

	return result, nil
}

// runPlan executes retrieval calls stage by stage. Calls in the same stage
// run concurrently; the evidence gate is evaluated before any stage later
// than the regulatory stage so a refusal skips dependent retrieval.
func (o *Orchestrator) runPlan(ctx context.Context, requestID string, plan *planner.Plan, snapshot *models.CollectionSnapshot, outputs *models.ComponentOutputs) map[models.CollectionKind]*models.QueryResult {
	results := make(map[models.CollectionKind]*models.QueryResult)
	var resultsMu sync.Mutex

	needsGate := plan.Intent == planner.IntentRiskAnalysis || plan.Intent == planner.IntentCombined

	for _, stage := range stages(plan.Calls) {
		if needsGate && outputs.Gate == nil {
			if regulatory, ok := results[models.KindRegulatory]; ok {
				o.evaluateGate(ctx, requestID, plan.RegulationName, regulatory, outputs)
				if !outputs.Gate.Proceed {
					break
				}
			}
		}

		calls := callsInStage(plan.Calls, stage)
		tasks := make([]workers.Task, len(calls))
		for i, call := range calls {
			call := call
			tasks[i] = func(taskCtx context.Context) error {
				result := o.executeCall(taskCtx, call, snapshot)
				resultsMu.Lock()
				results[call.CollectionKind] = result
				resultsMu.Unlock()
				return nil
			}
		}
		o.pool.Run(ctx, tasks)

		o.publish(interfaces.EventRetrievalCompleted, requestID, map[string]interface{}{
			"stage": stage,
			"calls": len(calls),
		})
	}

	if needsGate && outputs.Gate == nil {
		o.evaluateGate(ctx, requestID, plan.RegulationName, results[models.KindRegulatory], outputs)
	}

	return results
}

// executeCall runs one retrieval call. Any failure degrades to an explicit
// empty result; retrieval errors never abort the pipeline.
func (o *Orchestrator) executeCall(ctx context.Context, call models.RetrievalCall, snapshot *models.CollectionSnapshot) *models.QueryResult {
	target := firstOfKind(snapshot, call.CollectionKind)
	if target == "" {
		o.logger.Debug().
			Str("kind", string(call.CollectionKind)).
			Msg("No collection of requested kind; returning empty result")
		return models.NoResults(call.SubQuery, call.CollectionKind)
	}

	answer, err := o.retrieval.Search(ctx, target, call.SubQuery)
	if err != nil {
		o.logger.Warn().Err(err).
			Str("collection", target).
			Str("kind", string(call.CollectionKind)).
			Msg("Retrieval call failed; degrading to empty result")
		return models.NoResults(call.SubQuery, call.CollectionKind)
	}

	if answer == nil || (answer.Answer == "" && len(answer.Citations) == 0) {
		return models.NoResults(call.SubQuery, call.CollectionKind)
	}

	return &models.QueryResult{
		Query:              call.SubQuery,
		CollectionsQueried: []models.CollectionKind{call.CollectionKind},
		ResultsFound:       true,
		Summary:            answer.Answer,
		KeyFindings:        keyFindings(answer.Answer),
		RelevantDocuments:  citationSources(answer.Citations),
		Citations:          answer.Citations,
	}
}

func (o *Orchestrator) evaluateGate(ctx context.Context, requestID, regulationName string, regulatory *models.QueryResult, outputs *models.ComponentOutputs) {
	available := o.availableRegulations(ctx)
	decision := o.gate.Check(regulationName, regulatory, available)

	outputs.Gate = &models.GateOutcome{
		RegulationName:       regulationName,
		Proceed:              decision.Proceed,
		Reason:               decision.Reason,
		AvailableRegulations: decision.AvailableRegulations,
	}

	o.publish(interfaces.EventGateDecision, requestID, map[string]interface{}{
		"regulation": regulationName,
		"proceed":    decision.Proceed,
	})

	if decision.Proceed {
		outputs.RegulationText = decision.RegulationText
	}
}

func (o *Orchestrator) runRiskAnalysis(plan *planner.Plan, results map[models.CollectionKind]*models.QueryResult, outputs *models.ComponentOutputs) {
	if outputs.Gate == nil {
		return
	}
	if !outputs.Gate.Proceed {
		outputs.Risk = risk.Refused(plan.RegulationName, outputs.Gate.Reason)
		return
	}
	outputs.Risk = o.comparator.Compare(plan.RegulationName, outputs.RegulationText, results[models.KindBusinessProcess])
}

func (o *Orchestrator) runGraphExtraction(results map[models.CollectionKind]*models.QueryResult, outputs *models.ComponentOutputs) {
	ontology := extractor.ParseOntology(results[models.KindOntology])
	outputs.Graph = o.extractor.Extract(ontology, results[models.KindBusinessProcess])
}

// registerUpload routes the uploaded file into a collection inferred from
// the file itself: schema files go to ontology, files named after the
// detected regulation go to regulatory, everything else to business-process.
func (o *Orchestrator) registerUpload(ctx context.Context, request string, upload *models.DocumentUpload) (string, error) {
	kind := uploadKind(request, upload)

	snapshot, err := o.collections.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load collections snapshot: %w", err)
	}

	target := firstOfKind(snapshot, kind)
	if target == "" {
		target = string(kind)
		if _, err := o.collections.Create(ctx, target, kind); err != nil {
			return "", fmt.Errorf("failed to create %s collection for upload: %w", kind, err)
		}
	}

	doc, err := o.documents.Upload(ctx, target, upload)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Uploaded %s to the %s collection.", doc.DisplayName, target), nil
}

func uploadKind(request string, upload *models.DocumentUpload) models.CollectionKind {
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if ext == ".yaml" || ext == ".yml" {
		return models.KindOntology
	}
	if regulation := planner.DetectRegulation(request); regulation != "" {
		if strings.Contains(strings.ToLower(upload.FileName), strings.ToLower(regulation)) {
			return models.KindRegulatory
		}
	}
	return models.KindBusinessProcess
}

// availableRegulations enumerates document display names across regulatory
// collections, used in gate refusal messages
func (o *Orchestrator) availableRegulations(ctx context.Context) []string {
	snapshot, err := o.collections.Snapshot(ctx)
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var names []string
	for _, collection := range snapshot.ByKind(models.KindRegulatory) {
		docs, err := o.collections.ListDocuments(ctx, collection.Name)
		if err != nil {
			continue
		}
		for _, doc := range docs {
			name := strings.TrimSuffix(doc.DisplayName, filepath.Ext(doc.DisplayName))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (o *Orchestrator) publish(eventType interfaces.EventType, requestID string, payload map[string]interface{}) {
	if o.events == nil {
		return
	}
	o.events.Publish(interfaces.Event{
		Type:      eventType,
		RequestID: requestID,
		Payload:   payload,
	})
}

func stages(calls []models.RetrievalCall) []int {
	seen := map[int]bool{}
	var out []int
	for _, call := range calls {
		if !seen[call.Stage] {
			seen[call.Stage] = true
			out = append(out, call.Stage)
		}
	}
	sort.Ints(out)
	return out
}

func callsInStage(calls []models.RetrievalCall, stage int) []models.RetrievalCall {
	var out []models.RetrievalCall
	for _, call := range calls {
		if call.Stage == stage {
			out = append(out, call)
		}
	}
	return out
}

func firstOfKind(snapshot *models.CollectionSnapshot, kind models.CollectionKind) string {
	for _, collection := range snapshot.Collections {
		if collection.Kind == kind {
			return collection.Name
		}
	}
	return ""
}

// keyFindings lifts list items out of the retrieval answer
func keyFindings(answer string) []string {
	var findings []string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			findings = append(findings, strings.TrimSpace(line[2:]))
		}
	}
	return findings
}

func citationSources(citations []models.Citation) []string {
	seen := map[string]bool{}
	var sources []string
	for _, citation := range citations {
		if !seen[citation.Source] {
			seen[citation.Source] = true
			sources = append(sources, citation.Source)
		}
	}
	return sources
}
