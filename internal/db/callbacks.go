/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/telemetry"
)

// registerCallbacks wires query timing into the Prometheus DB metrics.
func registerCallbacks(gdb *gorm.DB) error {
	if err := gdb.Callback().Query().Before("gorm:query").Register("telemetry:before_query", beforeOp); err != nil {
		return err
	}
	if err := gdb.Callback().Query().After("gorm:query").Register("telemetry:after_query", afterOp("query")); err != nil {
		return err
	}
	if err := gdb.Callback().Create().Before("gorm:create").Register("telemetry:before_create", beforeOp); err != nil {
		return err
	}
	if err := gdb.Callback().Create().After("gorm:create").Register("telemetry:after_create", afterOp("create")); err != nil {
		return err
	}
	if err := gdb.Callback().Update().Before("gorm:update").Register("telemetry:before_update", beforeOp); err != nil {
		return err
	}
	if err := gdb.Callback().Update().After("gorm:update").Register("telemetry:after_update", afterOp("update")); err != nil {
		return err
	}
	if err := gdb.Callback().Delete().Before("gorm:delete").Register("telemetry:before_delete", beforeOp); err != nil {
		return err
	}
	if err := gdb.Callback().Delete().After("gorm:delete").Register("telemetry:after_delete", afterOp("delete")); err != nil {
		return err
	}
	return nil
}

func beforeOp(tx *gorm.DB) {
	tx.InstanceSet("telemetry:start", time.Now())
}

func afterOp(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		start, ok := tx.InstanceGet("telemetry:start")
		if !ok {
			return
		}
		startTime, ok := start.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		telemetry.DBQueryDuration.WithLabelValues(op, table).Observe(time.Since(startTime).Seconds())
		status := "ok"
		if tx.Error != nil {
			status = "error"
		}
		telemetry.DBQueriesTotal.WithLabelValues(op, table, status).Inc()
	}
}
