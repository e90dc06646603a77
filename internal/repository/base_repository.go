package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Op フィルター述語の演算子
type Op string

const (
	OpEq   Op = "eq"
	OpIn   Op = "in"
	OpGt   Op = "gt"
	OpGte  Op = "gte"
	OpLt   Op = "lt"
	OpLte  Op = "lte"
	OpLike Op = "like"
)

// Condition 構造化されたフィルター述語。ストア固有のクエリに変換される
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// Eq 等価条件
func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// In 集合包含条件
func In(field string, values interface{}) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// Gt 比較条件（より大きい）
func Gt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGt, Value: value}
}

// Lt 比較条件（より小さい）
func Lt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpLt, Value: value}
}

// Like 部分一致条件
func Like(field string, value string) Condition {
	return Condition{Field: field, Op: OpLike, Value: "%" + value + "%"}
}

// FindOptions 一覧取得のソート・ページング指定
type FindOptions struct {
	SortBy string // 空なら未指定
	Desc   bool
	Limit  int
}

// applyConditions 述語をGORMのWHERE句に変換する
func applyConditions(tx *gorm.DB, conds []Condition) *gorm.DB {
	for _, c := range conds {
		switch c.Op {
		case OpEq:
			tx = tx.Where(fmt.Sprintf("%s = ?", c.Field), c.Value)
		case OpIn:
			tx = tx.Where(fmt.Sprintf("%s IN ?", c.Field), c.Value)
		case OpGt:
			tx = tx.Where(fmt.Sprintf("%s > ?", c.Field), c.Value)
		case OpGte:
			tx = tx.Where(fmt.Sprintf("%s >= ?", c.Field), c.Value)
		case OpLt:
			tx = tx.Where(fmt.Sprintf("%s < ?", c.Field), c.Value)
		case OpLte:
			tx = tx.Where(fmt.Sprintf("%s <= ?", c.Field), c.Value)
		case OpLike:
			tx = tx.Where(fmt.Sprintf("%s LIKE ?", c.Field), c.Value)
		}
	}
	return tx
}

// applyOptions ソート・件数制限をクエリに反映する
func applyOptions(tx *gorm.DB, opts FindOptions) *gorm.DB {
	if opts.SortBy != "" {
		order := opts.SortBy
		if opts.Desc {
			order += " DESC"
		}
		tx = tx.Order(order)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	return tx
}

// BaseRepository ドキュメントコレクション1つに対する共通CRUD。
// すべての書き込みはこの層を通るので、成功した変更ごとに
// ちょうど1回イベントを発行できる
type BaseRepository[M any] struct {
	db *gorm.DB
	// Persistのupsertキーとなる一意カラムの組
	conflictColumns []string
}

// NewBaseRepository BaseRepositoryを作成
func NewBaseRepository[M any](db *gorm.DB, conflictColumns ...string) *BaseRepository[M] {
	return &BaseRepository[M]{db: db, conflictColumns: conflictColumns}
}

// DB 下位のGORMハンドルを返す（集計など個別クエリ用）
func (r *BaseRepository[M]) DB() *gorm.DB {
	return r.db
}

// FindOne 条件に一致する1件を返す。見つからない場合は(nil, nil)
func (r *BaseRepository[M]) FindOne(conds ...Condition) (*M, error) {
	var m M
	err := applyConditions(r.db.Model(new(M)), conds).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAll 条件に一致する全件を返す
func (r *BaseRepository[M]) FindAll(opts FindOptions, conds ...Condition) ([]M, error) {
	var ms []M
	tx := applyConditions(r.db.Model(new(M)), conds)
	if err := applyOptions(tx, opts).Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// Count 条件に一致する件数を返す
func (r *BaseRepository[M]) Count(conds ...Condition) (int64, error) {
	var count int64
	if err := applyConditions(r.db.Model(new(M)), conds).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Persist 宣言された一意キーでupsertする。
// 既存行があれば全カラムを上書きし、なければ挿入する
func (r *BaseRepository[M]) Persist(m *M) error {
	conflict := clause.OnConflict{UpdateAll: true}
	for _, col := range r.conflictColumns {
		conflict.Columns = append(conflict.Columns, clause.Column{Name: col})
	}
	return r.db.Clauses(conflict).Create(m).Error
}

// PersistIfAbsent 一意キーが未使用の場合のみ挿入するupsert。
// 挿入が実際に起きたかどうかを返す。存在チェックと挿入の間の
// 競合を避けるため、アトミックなupsertの結果だけで判定する
func (r *BaseRepository[M]) PersistIfAbsent(m *M) (bool, error) {
	conflict := clause.OnConflict{DoNothing: true}
	for _, col := range r.conflictColumns {
		conflict.Columns = append(conflict.Columns, clause.Column{Name: col})
	}
	res := r.db.Clauses(conflict).Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Update 主キーに一致する行の全カラムを更新する。
// 一致する行がない場合はエラーにせず何もしない（ログのみ残す）
func (r *BaseRepository[M]) Update(m *M) error {
	res := r.db.Model(m).Select("*").Omit("created_at").Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("repository: 更新対象が存在しませんでした: %T", m)
	}
	return nil
}

// Remove 主キーに一致する行を削除する。削除が起きたかどうかを返す
func (r *BaseRepository[M]) Remove(m *M) (bool, error) {
	res := r.db.Delete(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
