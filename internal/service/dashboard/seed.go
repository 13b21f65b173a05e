package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// LoadSeed 读取 YAML 初始文档，在默认文档上覆盖其中出现的顶层字段
// path 为空时返回 model.DefaultDocument
func LoadSeed(path string) (func() *model.Document, error) {
	if path == "" {
		return model.DefaultDocument, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取初始文档失败: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("解析初始文档失败 %s: %w", path, err)
	}
	return func() *model.Document { return seed.Clone() }, nil
}

// ParseSeed 解析 YAML 初始文档；键名与文档 JSON 字段一致
func ParseSeed(data []byte) (*model.Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	// YAML → JSON 再解码，复用文档的 json 标签
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	doc := model.DefaultDocument()
	// 人员名单整体替换，不与默认名单逐项合并
	if _, ok := raw["aeData"]; ok {
		doc.AEData = nil
	}
	if _, ok := raw["salesData"]; ok {
		doc.SalesData = nil
	}
	if err := json.Unmarshal(buf, doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Time{}
	model.Migrate(doc, doc)
	return doc, nil
}
