package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metalagman/triage/internal/audit"
	"github.com/metalagman/triage/internal/config"
	"github.com/metalagman/triage/internal/db"
	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/ticket"
)

type stores struct {
	cfg     config.Config
	db      *sql.DB
	items   *item.Store
	tickets *ticket.Store
	events  *audit.Log
}

func openStores() (*stores, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &stores{
		cfg:     cfg,
		db:      conn,
		items:   item.NewStore(conn),
		tickets: ticket.NewStore(conn),
		events:  audit.NewLog(conn),
	}, nil
}

func (s *stores) Close() {
	_ = s.db.Close()
}
