package graph

import (
	"strings"

	"github.com/repolens/backend/pkg/common"
)

// kindRules is an ordered heuristic table: the first matching substring
// decides the kind. Order matters, e.g. "servicerepository" should be
// data, not service, so data markers come first.
var kindRules = []struct {
	markers []string
	kind    common.NodeKind
}{
	{[]string{"repository", "store", "database", "db", "cache", "table", "schema", "数据库", "缓存"}, common.KindData},
	{[]string{"service", "gateway", "client", "api", "server", "proxy", "服务", "网关"}, common.KindService},
	{[]string{"readme", "guide", "doc", "manual", "spec", "tutorial", "文档", "手册", "指南"}, common.KindDocument},
	{[]string{"pipeline", "workflow", "job", "task", "queue", "process", "流程", "任务", "队列"}, common.KindProcess},
	{[]string{"module", "controller", "handler", "component", "plugin", "package", "模块", "组件", "插件"}, common.KindModule},
}

// ClassifyLabel assigns a node kind from suffix/substring heuristics.
// Deterministic and total: unmatched labels are concepts.
func ClassifyLabel(label string) common.NodeKind {
	folded := strings.ToLower(label)
	for _, rule := range kindRules {
		for _, marker := range rule.markers {
			if strings.Contains(folded, marker) {
				return rule.kind
			}
		}
	}
	return common.KindConcept
}
