package hateoas

import (
	"bytes"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

// Field は整形済みエンティティの 1 項目です。
type Field struct {
	Name  string
	Value any
}

// ShapedEntity は選択されたフィールドだけを宣言順に保持するエンティティです。
type ShapedEntity struct {
	fields []Field
}

// Fields は保持しているフィールドを返します。
func (e ShapedEntity) Fields() []Field {
	return e.fields
}

// Get は name のフィールド値を返します。
func (e ShapedEntity) Get(name string) (any, bool) {
	for _, f := range e.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// With は末尾にフィールドを追加したコピーを返します。
func (e ShapedEntity) With(name string, value any) ShapedEntity {
	fields := make([]Field, len(e.fields), len(e.fields)+1)
	copy(fields, e.fields)
	return ShapedEntity{fields: append(fields, Field{Name: name, Value: value})}
}

// MarshalJSON はフィールドの順序を保ったまま JSON オブジェクトとして出力します。
func (e ShapedEntity) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type shapeField struct {
	name  string
	index int
}

// DataShaper は T の JSON フィールドから要求された項目だけを取り出します。
// フィールド名は json タグ名で、大文字小文字を区別しません。
type DataShaper[T any] struct {
	fields []shapeField
}

// NewDataShaper は T の公開フィールドを走査して DataShaper を生成します。
func NewDataShaper[T any]() *DataShaper[T] {
	typ := reflect.TypeFor[T]()
	fields := make([]shapeField, 0, typ.NumField())
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, shapeField{name: name, index: i})
	}
	return &DataShaper[T]{fields: fields}
}

// ShapeData は items を fields で整形します。fields はカンマ区切りで、空の場合は全フィールドを返します。
// 存在しないフィールド名は無視されます。
func (s *DataShaper[T]) ShapeData(items []*T, fields string) []ShapedEntity {
	selected := s.selected(fields)
	out := make([]ShapedEntity, 0, len(items))
	for _, item := range items {
		out = append(out, shape(item, selected))
	}
	return out
}

// ShapeOne は 1 件を fields で整形します。
func (s *DataShaper[T]) ShapeOne(item *T, fields string) ShapedEntity {
	return shape(item, s.selected(fields))
}

func (s *DataShaper[T]) selected(fields string) []shapeField {
	requested := make([]string, 0)
	for _, f := range strings.Split(fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			requested = append(requested, f)
		}
	}
	if len(requested) == 0 {
		return s.fields
	}

	selected := make([]shapeField, 0, len(requested))
	for _, f := range s.fields {
		for _, r := range requested {
			if strings.EqualFold(f.name, r) {
				selected = append(selected, f)
				break
			}
		}
	}
	return selected
}

func shape[T any](item *T, fields []shapeField) ShapedEntity {
	v := reflect.ValueOf(item).Elem()
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, Field{Name: f.name, Value: v.Field(f.index).Interface()})
	}
	return ShapedEntity{fields: out}
}
