package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/abhisek/smartquiz/internal/quiz"
)

// Collection names.
const (
	questionsCollection = "questions"
	historyCollection   = "quiz_history"
	eventsCollection    = "llm_events"
	countersCollection  = "counters"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "smartquiz"

// MongoStore is the MongoDB backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database), now: time.Now}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(questionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "content_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create questions index: %w", err)
	}
	_, err = s.db.Collection(historyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "sequence", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create history index: %w", err)
	}
	return nil
}

// Name identifies the backend.
func (s *MongoStore) Name() string { return "mongodb" }

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) QuestionSetRepo() QuestionSetRepo { return &mongoQuestionSets{s} }
func (s *MongoStore) HistoryRepo() HistoryRepo         { return &mongoHistory{s} }
func (s *MongoStore) EventRepo() EventRepo             { return &mongoEvents{s} }

// nextSequence plays the role of the SQLite global_sequence table.
func (s *MongoStore) nextSequence(ctx context.Context) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": "global_sequence"},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return doc.Value, nil
}

// Question sets.

type questionSetDoc struct {
	ContentHash string          `bson:"content_hash"`
	Questions   []quiz.Question `bson:"questions"`
	Count       int             `bson:"question_count"`
	CreatedAt   time.Time       `bson:"created_at"`
}

type mongoQuestionSets struct{ s *MongoStore }

func (r *mongoQuestionSets) SaveQuestions(ctx context.Context, hash string, questions []quiz.Question) error {
	doc := questionSetDoc{
		ContentHash: hash,
		Questions:   questions,
		Count:       len(questions),
		CreatedAt:   r.s.now().UTC(),
	}
	_, err := r.s.db.Collection(questionsCollection).ReplaceOne(ctx,
		bson.M{"content_hash": hash}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save question set: %w", err)
	}
	return nil
}

func (r *mongoQuestionSets) QuestionsByHash(ctx context.Context, hash string) ([]quiz.Question, error) {
	var doc questionSetDoc
	err := r.s.db.Collection(questionsCollection).FindOne(ctx, bson.M{"content_hash": hash}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find question set: %w", err)
	}
	return doc.Questions, nil
}

func (r *mongoQuestionSets) ListQuestionSets(ctx context.Context, limit int) ([]QuestionSetInfo, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"questions": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.s.db.Collection(questionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer cursor.Close(ctx)

	var out []QuestionSetInfo
	for cursor.Next(ctx) {
		var doc questionSetDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode question set: %w", err)
		}
		out = append(out, QuestionSetInfo{Hash: doc.ContentHash, Count: doc.Count, CreatedAt: doc.CreatedAt})
	}
	return out, cursor.Err()
}

// History.

// historyDoc stores difficulty keys as labels; bson map keys must be strings.
type historyDoc struct {
	ID               string                `bson:"_id"`
	Sequence         int64                 `bson:"sequence"`
	UserID           string                `bson:"user_id"`
	Timestamp        time.Time             `bson:"timestamp"`
	Total            int                   `bson:"total"`
	Correct          int                   `bson:"correct"`
	Accuracy         int                   `bson:"accuracy"`
	AvgResponseTime  float64               `bson:"avg_response_time"`
	TopicPerformance map[string]quiz.Tally `bson:"topic_performance"`
	DifficultyPerf   map[string]quiz.Tally `bson:"difficulty_performance"`
	Answers          []quiz.AnswerRecord   `bson:"answers"`
}

func toHistoryDoc(e *quiz.HistoryEntry, seq int64) historyDoc {
	diff := make(map[string]quiz.Tally, len(e.Results.DifficultyAccuracy))
	for t, tally := range e.Results.DifficultyAccuracy {
		diff[t.String()] = tally
	}
	return historyDoc{
		ID:               e.ID,
		Sequence:         seq,
		UserID:           e.UserID,
		Timestamp:        e.Timestamp,
		Total:            e.Results.Total,
		Correct:          e.Results.Correct,
		Accuracy:         e.Results.AccuracyPercent,
		AvgResponseTime:  e.Results.AverageResponseTime,
		TopicPerformance: e.Results.TopicAccuracy,
		DifficultyPerf:   diff,
		Answers:          e.Answers,
	}
}

func (d historyDoc) entry() quiz.HistoryEntry {
	diff := make(map[quiz.Tier]quiz.Tally, len(d.DifficultyPerf))
	for label, tally := range d.DifficultyPerf {
		diff[quiz.ParseTier(label)] = tally
	}
	topics := d.TopicPerformance
	if topics == nil {
		topics = make(map[string]quiz.Tally)
	}
	return quiz.HistoryEntry{
		ID:        d.ID,
		UserID:    d.UserID,
		Timestamp: d.Timestamp.UTC(),
		Results: quiz.Results{
			Total:               d.Total,
			Correct:             d.Correct,
			Incorrect:           d.Total - d.Correct,
			AccuracyPercent:     d.Accuracy,
			AverageResponseTime: d.AvgResponseTime,
			TopicAccuracy:       topics,
			DifficultyAccuracy:  diff,
		},
		Answers: d.Answers,
	}
}

type mongoHistory struct{ s *MongoStore }

func (r *mongoHistory) SaveAttempt(ctx context.Context, userID string, results quiz.Results, answers []quiz.AnswerRecord) (*quiz.HistoryEntry, error) {
	if answers == nil {
		answers = []quiz.AnswerRecord{}
	}
	entry := &quiz.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: r.s.now().UTC().Truncate(time.Millisecond),
		Results:   results,
		Answers:   answers,
	}

	seq, err := r.s.nextSequence(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := r.s.db.Collection(historyCollection).InsertOne(ctx, toHistoryDoc(entry, seq)); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return entry, nil
}

func (r *mongoHistory) History(ctx context.Context, userID string, limit int) ([]quiz.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.s.db.Collection(historyCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer cursor.Close(ctx)

	var out []quiz.HistoryEntry
	for cursor.Next(ctx) {
		var doc historyDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		out = append(out, doc.entry())
	}
	return out, cursor.Err()
}

func (r *mongoHistory) ClearHistory(ctx context.Context, userID string) (int64, error) {
	res, err := r.s.db.Collection(historyCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.DeletedCount, nil
}

// LLM events.

type llmEventDoc struct {
	ID           int       `bson:"_id"`
	Sequence     int64     `bson:"sequence"`
	Timestamp    time.Time `bson:"timestamp"`
	Provider     string    `bson:"provider"`
	Model        string    `bson:"model"`
	Purpose      string    `bson:"purpose"`
	InputTokens  int       `bson:"input_tokens"`
	OutputTokens int       `bson:"output_tokens"`
	LatencyMs    int64     `bson:"latency_ms"`
	Success      bool      `bson:"success"`
	ErrorMessage string    `bson:"error_message"`
	RequestBody  string    `bson:"request_body"`
	ResponseBody string    `bson:"response_body"`
}

func (d llmEventDoc) event() LLMEvent {
	return LLMEvent{
		ID:        d.ID,
		Sequence:  d.Sequence,
		Timestamp: d.Timestamp.UTC(),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     d.Provider,
			Model:        d.Model,
			Purpose:      d.Purpose,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			LatencyMs:    d.LatencyMs,
			Success:      d.Success,
			ErrorMessage: d.ErrorMessage,
			RequestBody:  d.RequestBody,
			ResponseBody: d.ResponseBody,
		},
	}
}

type mongoEvents struct{ s *MongoStore }

func (r *mongoEvents) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.s.nextSequence(ctx)
	if err != nil {
		return err
	}
	doc := llmEventDoc{
		// The sequence doubles as the numeric ID shown by "llm view".
		ID:           int(seq),
		Sequence:     seq,
		Timestamp:    r.s.now().UTC(),
		Provider:     data.Provider,
		Model:        data.Model,
		Purpose:      data.Purpose,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	}
	if _, err := r.s.db.Collection(eventsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *mongoEvents) QueryLLMEvents(ctx context.Context, q QueryOpts) ([]LLMEvent, error) {
	filter := bson.M{}
	seqFilter := bson.M{}
	if q.After > 0 {
		seqFilter["$gt"] = q.After
	}
	if q.Before > 0 {
		seqFilter["$lt"] = q.Before
	}
	if len(seqFilter) > 0 {
		filter["sequence"] = seqFilter
	}
	tsFilter := bson.M{}
	if !q.From.IsZero() {
		tsFilter["$gte"] = q.From
	}
	if !q.To.IsZero() {
		tsFilter["$lte"] = q.To
	}
	if len(tsFilter) > 0 {
		filter["timestamp"] = tsFilter
	}
	if q.Purpose != "" {
		filter["purpose"] = q.Purpose
	}

	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.s.db.Collection(eventsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer cursor.Close(ctx)

	var out []LLMEvent
	for cursor.Next(ctx) {
		var doc llmEventDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode LLM event: %w", err)
		}
		out = append(out, doc.event())
	}
	return out, cursor.Err()
}

func (r *mongoEvents) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	var doc llmEventDoc
	err := r.s.db.Collection(eventsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	e := doc.event()
	return &e, nil
}

type usageDoc struct {
	Key          string  `bson:"_id"`
	Calls        int     `bson:"calls"`
	Failures     int     `bson:"failures"`
	InputTokens  int     `bson:"input_tokens"`
	OutputTokens int     `bson:"output_tokens"`
	AvgLatency   float64 `bson:"avg_latency"`
}

func (r *mongoEvents) usageBy(ctx context.Context, field string) ([]usageDoc, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "calls", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "failures", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$success", 0, 1}},
			}}}},
			{Key: "input_tokens", Value: bson.D{{Key: "$sum", Value: "$input_tokens"}}},
			{Key: "output_tokens", Value: bson.D{{Key: "$sum", Value: "$output_tokens"}}},
			{Key: "avg_latency", Value: bson.D{{Key: "$avg", Value: "$latency_ms"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.s.db.Collection(eventsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var docs []usageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode usage: %w", err)
	}
	return docs, nil
}

func (r *mongoEvents) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	docs, err := r.usageBy(ctx, "purpose")
	if err != nil {
		return nil, err
	}
	out := make([]PurposeUsage, len(docs))
	for i, d := range docs {
		out[i] = PurposeUsage{
			Purpose:      d.Key,
			Calls:        d.Calls,
			Failures:     d.Failures,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			AvgLatencyMs: int64(d.AvgLatency),
		}
	}
	return out, nil
}

func (r *mongoEvents) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	docs, err := r.usageBy(ctx, "model")
	if err != nil {
		return nil, err
	}
	out := make([]ModelUsage, len(docs))
	for i, d := range docs {
		out[i] = ModelUsage{
			Model:        d.Key,
			Calls:        d.Calls,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
		}
	}
	return out, nil
}
