// Package xdispatch 提供弹性调度核心的顶层组合。
//
// # 组合关系
//
// 调用方 → Dispatch → 微批聚合（xbatch） → 多层回退链（xtier）
// → 熔断保护（xbreaker） → 重试（xretry） → 超时竞速（xrace） → 后端。
//
// 请求先进入微批聚合器按大小/时间窗口成批，整批作为一次逻辑调用
// 交给回退链；回退链按顺序尝试各层级后端，每个层级有独立的熔断器、
// 重试预算与超时。批内每个请求的 Future 以对应的结果元素独立完成。
//
// # 配置面
//
// Config 覆盖全部可调参数（重试、退避、熔断、批窗口、层级超时），
// 可从 YAML/JSON 文件或字节数据加载（xconf），也可直接以零值起步
// 使用 Normalize 填充默认值。
//
// # 使用
//
//	cfg := xdispatch.DefaultConfig()
//	d, err := xdispatch.New("inference", []xdispatch.TierBackend[Prompt, Reply]{
//	    {Name: "primary", Invoke: callPrimary},
//	    {Name: "cache", Invoke: callCache},
//	}, cfg)
//	defer d.Close()
//
//	future, err := d.Dispatch(ctx, xdispatch.NewRequest(prompt))
//	reply, err := future.Wait(ctx)
package xdispatch
