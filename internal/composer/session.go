// Package composer owns the block sequence for one article/product edit
// session. It is the single authority over the in-memory document: block
// editors report content changes upward and the session applies them, so no
// editing surface ever holds authoritative state of its own.
package composer

import (
	"blenderforge/internal/config"
	"blenderforge/internal/content"
)

// State is the lifecycle phase of an edit session.
//
//	Loading → Editing → Validating → Saving → Success
//	                ↑__________________|  (validation or save failure)
type State string

const (
	StateLoading    State = "loading"
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSaving     State = "saving"
	StateSuccess    State = "success"
)

// Session holds the document for one edit session. Not safe for concurrent
// use; one session exists per user per record at a time.
type Session struct {
	state   State
	doc     content.Document
	saveErr error
}

// NewSession starts a compose session for a new record: one empty text
// block, ready for editing.
func NewSession() *Session {
	return &Session{state: StateEditing, doc: content.NewDocument()}
}

// LoadSession starts an edit session over an existing record's stored
// document. Malformed stored content degrades to a legacy block via
// ParseDocument rather than failing the session. A document loaded empty is
// topped up to the one-block minimum.
func LoadSession(raw string) *Session {
	doc := content.ParseDocument(raw)
	if len(doc) == 0 {
		doc = content.NewDocument()
	}
	return &Session{state: StateEditing, doc: doc}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// SaveErr returns the error from the last failed save attempt, if any.
func (s *Session) SaveErr() error { return s.saveErr }

// Blocks returns the block sequence in display order. The returned slice is
// shared; callers must treat it as read-only and mutate through the session.
func (s *Session) Blocks() content.Document { return s.doc }

// BlockCount returns the number of blocks in the session.
func (s *Session) BlockCount() int { return len(s.doc) }

// AddBlock appends a new empty block of the given type. Once the document
// holds the maximum number of blocks the call silently refuses (the added
// flag is false); an unknown type is an error.
func (s *Session) AddBlock(t content.BlockType) (content.Block, bool, error) {
	if len(s.doc) >= config.MaxDocumentBlocks {
		return content.Block{}, false, nil
	}
	block, err := content.NewBlock(t)
	if err != nil {
		return content.Block{}, false, err
	}
	s.doc = append(s.doc, block)
	s.touch()
	return block, true, nil
}

// RemoveBlock removes the block with the given ID. It refuses (returns
// false) when the block does not exist or when removal would leave an empty
// document: at least one block always remains.
func (s *Session) RemoveBlock(id string) bool {
	if len(s.doc) <= 1 {
		return false
	}
	i := s.doc.FindBlock(id)
	if i < 0 {
		return false
	}
	s.doc = append(s.doc[:i], s.doc[i+1:]...)
	s.touch()
	return true
}

// SetText replaces a text block's rich-text content in place, preserving
// its identifier and position. Legacy blocks are immutable and refuse the
// update, as do blocks of any other type.
func (s *Session) SetText(id string, rt content.RichText) bool {
	return s.update(id, func(b *content.Block) bool {
		if b.Type != content.BlockText || b.IsLegacy() {
			return false
		}
		b.Text = rt
		return true
	})
}

// SetImageURL replaces an image block's URL. An empty URL returns the block
// to its awaiting-upload placeholder state.
func (s *Session) SetImageURL(id, url string) bool {
	return s.update(id, func(b *content.Block) bool {
		if b.Type != content.BlockImage {
			return false
		}
		b.ImageURL = url
		return true
	})
}

// SetSocial replaces a social block's content.
func (s *Session) SetSocial(id string, sc content.SocialContent) bool {
	return s.update(id, func(b *content.Block) bool {
		if b.Type != content.BlockSocial {
			return false
		}
		b.Social = sc
		return true
	})
}

// SetSupport replaces a support block's content.
func (s *Session) SetSupport(id string, sc content.SupportContent) bool {
	return s.update(id, func(b *content.Block) bool {
		if b.Type != content.BlockSupport {
			return false
		}
		b.Support = sc
		return true
	})
}

func (s *Session) update(id string, fn func(*content.Block) bool) bool {
	i := s.doc.FindBlock(id)
	if i < 0 {
		return false
	}
	if !fn(&s.doc[i]) {
		return false
	}
	s.touch()
	return true
}

// touch returns a failed session to the editing state when content changes.
func (s *Session) touch() {
	if s.state == StateValidating || s.state == StateSaving {
		return
	}
	s.state = StateEditing
	s.saveErr = nil
}

// Validate runs the full document-level rule set against the session and
// the record metadata. On success the session transitions to Saving and the
// caller proceeds to persist; on failure it returns to Editing with every
// violated rule reported at once, and no collaborator may be called.
func (s *Session) Validate(meta *Metadata) error {
	s.state = StateValidating
	if errs := meta.validate(s.doc); len(errs) > 0 {
		s.state = StateEditing
		return errs
	}
	s.state = StateSaving
	return nil
}

// Serialize produces the persisted payload. Only meaningful once Validate
// has passed, but callable at any time (drafts, tests).
func (s *Session) Serialize() (string, error) {
	return s.doc.Serialize()
}

// Complete marks the save as succeeded; the session is finished.
func (s *Session) Complete() {
	s.state = StateSuccess
	s.saveErr = nil
}

// Fail records a save failure and returns the session to Editing so the
// user can retry. The document is untouched.
func (s *Session) Fail(err error) {
	s.state = StateEditing
	s.saveErr = err
}
