// Package xconf 基于 koanf 加载 YAML/JSON 配置，并支持文件变更后的热重载。
//
// 只负责加载、反序列化和重载；默认值与校验由调用方在 Unmarshal 之后完成。
//
//	cfg, err := xconf.New("/etc/xcoord/config.yaml")
//	var s Settings
//	err = cfg.Unmarshal("", &s)
//
// # 并发
//
// Reload 解析成功后整体替换 koanf 实例，Unmarshal 读到的总是某一次完整加载的快照。
// 解析失败时保留旧配置。
//
// # 监视
//
// [Watcher] 监视配置文件所在目录（编辑器可能先删后建），对目标文件的
// Write/Create/Rename 事件防抖后调用 Reload 并回调。Run 阻塞直到 ctx 取消，
// 返回后不会再有回调执行。
package xconf
