package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/hvacjoy/joyline/pkg/domain/interfaces"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

const (
	callsCollection       = "calls"
	transcriptsCollection = "transcripts"
)

// transcriptDoc is the Firestore document representation of
// model.TranscriptLine. Meta is stored as a JSON blob: the slot state is
// opaque to the store and its shape changes with the policy version.
type transcriptDoc struct {
	ID        string    `firestore:"ID"`
	CallSID   string    `firestore:"CallSID"`
	Caller    string    `firestore:"Caller"`
	Role      string    `firestore:"Role"`
	Text      string    `firestore:"Text"`
	TurnIndex int       `firestore:"TurnIndex"`
	Meta      string    `firestore:"Meta"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

func toTranscriptDoc(l *model.TranscriptLine) (*transcriptDoc, error) {
	doc := &transcriptDoc{
		ID:        string(l.ID),
		CallSID:   string(l.CallSID),
		Caller:    l.Caller,
		Role:      string(l.Role),
		Text:      l.Text,
		TurnIndex: l.TurnIndex,
		CreatedAt: l.CreatedAt,
	}
	if l.Meta != nil {
		raw, err := json.Marshal(l.Meta)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal transcript meta")
		}
		doc.Meta = string(raw)
	}
	return doc, nil
}

func fromTranscriptDoc(d *transcriptDoc) (*model.TranscriptLine, error) {
	line := &model.TranscriptLine{
		ID:        types.TranscriptID(d.ID),
		CallSID:   types.CallSID(d.CallSID),
		Caller:    d.Caller,
		Role:      types.Role(d.Role),
		Text:      d.Text,
		TurnIndex: d.TurnIndex,
		CreatedAt: d.CreatedAt,
	}
	if d.Meta != "" {
		var meta model.TurnMeta
		if err := json.Unmarshal([]byte(d.Meta), &meta); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal transcript meta",
				goerr.V("doc_id", d.ID))
		}
		line.Meta = &meta
	}
	return line, nil
}

type transcriptRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.TranscriptRepository = &transcriptRepository{}

func newTranscriptRepository(client *firestore.Client) *transcriptRepository {
	return &transcriptRepository{client: client}
}

// linesCollection returns the subcollection path:
// calls/{callSID}/transcripts
func (r *transcriptRepository) linesCollection(callSID types.CallSID) *firestore.CollectionRef {
	return r.client.
		Collection(r.collectionPrefix + callsCollection).Doc(string(callSID)).
		Collection(transcriptsCollection)
}

func (r *transcriptRepository) Append(ctx context.Context, line *model.TranscriptLine) (*model.TranscriptLine, error) {
	if line == nil {
		return nil, goerr.New("transcript line is nil")
	}
	if line.CallSID == "" {
		return nil, goerr.New("transcript line requires a call SID")
	}

	created := *line
	if created.ID == "" {
		created.ID = types.NewTranscriptID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	doc, err := toTranscriptDoc(&created)
	if err != nil {
		return nil, err
	}

	ref := r.linesCollection(created.CallSID).Doc(string(created.ID))
	if _, err := ref.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to append transcript line",
			goerr.V("call_sid", created.CallSID),
			goerr.V("turn_index", created.TurnIndex))
	}

	return &created, nil
}

func (r *transcriptRepository) List(ctx context.Context, callSID types.CallSID) ([]*model.TranscriptLine, error) {
	query := r.linesCollection(callSID).OrderBy("TurnIndex", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var lines []*model.TranscriptLine
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate transcript lines",
				goerr.V("call_sid", callSID))
		}

		var d transcriptDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal transcript line",
				goerr.V("doc_id", doc.Ref.ID))
		}

		line, err := fromTranscriptDoc(&d)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func (r *transcriptRepository) LatestAssistant(ctx context.Context, callSID types.CallSID) (*model.TranscriptLine, error) {
	query := r.linesCollection(callSID).
		Where("Role", "==", string(types.RoleAssistant)).
		OrderBy("TurnIndex", firestore.Desc).
		Limit(1)

	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest assistant line",
			goerr.V("call_sid", callSID))
	}

	var d transcriptDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal transcript line",
			goerr.V("doc_id", doc.Ref.ID))
	}

	return fromTranscriptDoc(&d)
}
