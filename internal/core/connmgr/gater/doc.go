// Package gater 实现连接门控
//
// 门控器在升级管线的四个检查点上做放行判断：
//
//	InterceptAccept    入站，握手前（只有地址可用）
//	InterceptDial      出站，握手前（对端 ID 已知时）
//	InterceptSecured   握手后（身份已验证）
//	InterceptUpgraded  多路复用安装后
//
// 任一检查点返回 false，升级立即失败且不再执行后续检查点。
// 本实现基于节点/地址黑名单；nil 门控器等价于全部放行。
package gater
