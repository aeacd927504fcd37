package admin

import (
	"github.com/weisyn/superuser-module-go/module"
)

// Fixed 构造时确定配置的管理层
//
// 只暴露执行与查询面，不持有任何管理入口。
type Fixed struct {
	core
}

// NewFixed 创建配置不可变的模块
func NewFixed(cfg *module.Config) (*Fixed, error) {
	m, err := module.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Fixed{core{m: m}}, nil
}
