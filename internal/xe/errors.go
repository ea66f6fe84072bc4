package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams    = orz.NewError(10400, "参数无效")
	ErrInvalidToken     = orz.NewError(10403, "令牌无效")
	ErrPermissionDenied = orz.NewError(10401, "您没有权限查看/修改/删除此数据")

	ErrInsufficientFunds         = orz.NewError(20001, "主账户余额不足")
	ErrDailyLimitReached         = orz.NewError(20002, "今日开单次数已达上限")
	ErrInsufficientCoinSelection = orz.NewError(20003, "至少需要选择8个币种")
	ErrAmountOutOfRange          = orz.NewError(20004, "投入金额不在允许范围内")
	ErrTradeNotEligible          = orz.NewError(20005, "交易尚未到期，无法结算")
	ErrTradeNotFound             = orz.NewError(20006, "交易不存在")
	ErrAlreadyCheckedIn          = orz.NewError(20007, "今天已经签到过了")
	ErrInvalidProfitMode         = orz.NewError(20008, "盈亏模式无效")
)
