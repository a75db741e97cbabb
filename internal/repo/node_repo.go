package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/pkg/dbutil"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

type NodeRepo struct {
	db     *sql.DB
	driver string
}

func NewNodeRepo(db *sql.DB, driver string) *NodeRepo {
	return &NodeRepo{db: db, driver: driver}
}

func (r *NodeRepo) List(ctx context.Context, namespace string) ([]model.Node, error) {
	where := map[string]interface{}{
		"namespace": namespace,
		"_orderby":  "node_key asc",
	}
	sqlStr, args, err := builder.BuildSelect("nodes", where, []string{"namespace", "node_key", "value", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.driver, sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Node, 0)
	for rows.Next() {
		var item model.Node
		if err := rows.Scan(&item.Namespace, &item.Key, &item.Value, &item.Mtime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *NodeRepo) Get(ctx context.Context, namespace, key string) (*model.Node, error) {
	where := map[string]interface{}{
		"namespace": namespace,
		"node_key":  key,
	}
	sqlStr, args, err := builder.BuildSelect("nodes", where, []string{"namespace", "node_key", "value", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.driver, sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var item model.Node
	if err := rows.Scan(&item.Namespace, &item.Key, &item.Value, &item.Mtime); err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert replaces the whole value of a node, creating it when missing.
func (r *NodeRepo) Upsert(ctx context.Context, item *model.Node) error {
	sqlStr := "INSERT INTO nodes (namespace, node_key, value, mtime) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT (namespace, node_key) DO UPDATE SET value = excluded.value, mtime = excluded.mtime"
	args := []interface{}{item.Namespace, item.Key, item.Value, item.Mtime}
	sqlStr, args = dbutil.Finalize(r.driver, sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *NodeRepo) Delete(ctx context.Context, namespace, key string) error {
	sqlStr, args, err := builder.BuildDelete("nodes", map[string]interface{}{
		"namespace": namespace,
		"node_key":  key,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.driver, sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *NodeRepo) ListNamespaces(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT namespace FROM nodes ORDER BY namespace")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
