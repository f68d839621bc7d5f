package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ruleFile 对应规则覆盖文件（YAML）的结构：
//
//	sites:
//	  feature:
//	    rows: li.ipc-metadata-list-summary-item
//	    fields:
//	      - name: name
//	        normalize: title
//	        candidates:
//	          - find: h3.ipc-title__text
type ruleFile struct {
	Sites map[string]Table `yaml:"sites"`
}

// LoadTables 解析规则覆盖文件，返回 site name -> Table。未知键直接报错，避免拼写错误被静默忽略。
func LoadTables(r io.Reader) (map[string]Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f ruleFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Table{}, nil
		}
		return nil, fmt.Errorf("解析规则文件失败：%w", err)
	}

	names := make([]string, 0, len(f.Sites))
	for name := range f.Sites {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := f.Sites[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("site %q：%w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if f.Sites == nil {
		f.Sites = map[string]Table{}
	}
	return f.Sites, nil
}

// LoadTablesFile 从路径读取规则覆盖文件。
func LoadTablesFile(path string) (map[string]Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return LoadTables(fh)
}
