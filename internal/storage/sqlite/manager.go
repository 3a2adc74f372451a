package sqlite

import (
	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/interfaces"
)

// Manager bundles the per-entity storages behind one SQLite connection
type Manager struct {
	db        *SQLiteDB
	warrants  interfaces.WarrantStorage
	documents interfaces.DocumentStorage
	hearings  interfaces.HearingStorage
	judgments interfaces.JudgmentStorage
	logger    arbor.ILogger
}

// NewManager creates a new SQLite storage manager
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (*Manager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:        db,
		warrants:  NewWarrantStorage(db, logger),
		documents: NewDocumentStorage(db, logger),
		hearings:  NewHearingStorage(db, logger),
		judgments: NewJudgmentStorage(db, logger),
		logger:    logger,
	}, nil
}

// Warrants returns the warrant storage interface
func (m *Manager) Warrants() interfaces.WarrantStorage {
	return m.warrants
}

// Documents returns the pleading document storage interface
func (m *Manager) Documents() interfaces.DocumentStorage {
	return m.documents
}

// Hearings returns the hearing storage interface
func (m *Manager) Hearings() interfaces.HearingStorage {
	return m.hearings
}

// Judgments returns the judgment storage interface
func (m *Manager) Judgments() interfaces.JudgmentStorage {
	return m.judgments
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
