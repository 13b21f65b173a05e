package model

// Channel 营销渠道（取值沿用历史数据中的韩文标签）
type Channel string

const (
	ChannelTotalMarketing Channel = "토탈 마케팅" // 整合营销
	ChannelPerformance    Channel = "퍼포먼스"   // 效果广告
	ChannelDelivery       Channel = "배달관리"   // 外卖代运营
	ChannelBrandBlog      Channel = "브랜드블로그" // 品牌博客

	// 后续新增渠道
	ChannelComment Channel = "댓글"
	ChannelMedia   Channel = "미디어"
	ChannelCarrot  Channel = "당근"
)

var knownChannels = []Channel{
	ChannelTotalMarketing,
	ChannelPerformance,
	ChannelDelivery,
	ChannelBrandBlog,
	ChannelComment,
	ChannelMedia,
	ChannelCarrot,
}

// KnownChannels 返回固定渠道枚举（按展示顺序）
func KnownChannels() []Channel {
	out := make([]Channel, len(knownChannels))
	copy(out, knownChannels)
	return out
}

// BaselineChannels 基线数据使用的四个初始渠道
func BaselineChannels() []Channel {
	return KnownChannels()[:4]
}

// Known 是否为已知渠道
func (c Channel) Known() bool {
	for _, k := range knownChannels {
		if k == c {
			return true
		}
	}
	return false
}

// Role 提交人角色
type Role string

const (
	RoleAE    Role = "ae"    // 续约（AE）
	RoleSales Role = "sales" // 新签（销售）
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	return r == RoleAE || r == RoleSales
}
