package domain

// Sentinel 是字段抽取失败时的固定占位值。
const Sentinel = "N/A"

// Record 是一行列表片段抽取出的扁平记录。
//
// 约束：
// - Fields 中声明的每个字段都必须有值；抽取失败时为 Sentinel，绝不缺失
// - 构造后只读（只暴露访问器），相同输入 => 相同 Record
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord 按声明顺序构造 Record；values 中缺失或为空的字段一律填 Sentinel。
// values 中未声明的键会被忽略。
func NewRecord(fields []string, values map[string]string) Record {
	r := Record{
		fields: append([]string(nil), fields...),
		values: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		v := values[f]
		if v == "" {
			v = Sentinel
		}
		r.values[f] = v
	}
	return r
}

// Fields 返回字段声明顺序（副本）。
func (r Record) Fields() []string { return append([]string(nil), r.fields...) }

// Get 返回字段值；未声明的字段同样返回 Sentinel（调用方无需处理 nil/缺失）。
func (r Record) Get(field string) string {
	if v, ok := r.values[field]; ok {
		return v
	}
	return Sentinel
}

// Has 报告字段是否在声明列表中。
func (r Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Map 返回字段到值的副本，便于测试与序列化。
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Missing 统计值为 Sentinel 的字段数。
func (r Record) Missing() int {
	n := 0
	for _, f := range r.fields {
		if r.values[f] == Sentinel {
			n++
		}
	}
	return n
}

// Dataset 是一个 Scope 的有序记录集合。序号从 1 开始，等于其在 Records 中的位置 + 1。
type Dataset struct {
	Scope   Scope
	Fields  []string
	Records []Record
}

// Empty 报告该 Scope 是否没有任何记录。
func (d Dataset) Empty() bool { return len(d.Records) == 0 }
