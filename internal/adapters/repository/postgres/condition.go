package postgres

import (
	"strconv"
	"strings"
)

// Condition は WHERE 句の断片です。プレースホルダには ? を使い、描画時に $n へ振り直されます。
// 列名は呼び出し側のコード上の定数に限定し、利用者の入力は必ず引数として渡してください。
type Condition struct {
	sql  string
	args []any
}

// Cond は任意の SQL 断片から Condition を生成します。
func Cond(sql string, args ...any) Condition {
	return Condition{sql: sql, args: args}
}

// Eq は column = value を表します。
func Eq(column string, value any) Condition {
	return Cond(column+" = ?", value)
}

// In は column IN (...) を表します。値が空の場合は常に偽になります。
func In(column string, values ...any) Condition {
	if len(values) == 0 {
		return Cond("FALSE")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return Cond(column+" IN ("+placeholders+")", values...)
}

// Between は両端を含む範囲条件です。
func Between(column string, lower, upper any) Condition {
	return Cond(column+" BETWEEN ? AND ?", lower, upper)
}

// Contains は大文字小文字を区別しない部分一致です。LIKE のメタ文字はエスケープされます。
func Contains(column, term string) Condition {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return Cond("LOWER("+column+") LIKE ?", pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// renderWhere は条件を AND で連結し、args の続きから番号を振った WHERE 句を返します。
func renderWhere(conds []Condition, args []any) (string, []any) {
	if len(conds) == 0 {
		return "", args
	}

	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		var sql string
		sql, args = rebind(c.sql, c.args, args)
		parts = append(parts, sql)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func rebind(sql string, condArgs, args []any) (string, []any) {
	var b strings.Builder
	b.Grow(len(sql) + 4*len(condArgs))

	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' || n >= len(condArgs) {
			b.WriteByte(sql[i])
			continue
		}
		args = append(args, condArgs[n])
		n++
		b.WriteString("$" + strconv.Itoa(len(args)))
	}
	return b.String(), args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
