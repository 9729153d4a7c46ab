package convert

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
)

// Fixed encoding profile: a single 640x360 H.264 rendition with stereo AAC,
// packaged as Apple HLS. The job template supplies anything not set here.
const (
	OutputGroupName = "Apple HLS"
	NameModifier    = "_360p"

	videoWidth      = 640
	videoHeight     = 360
	videoMaxBitrate = 1_200_000
	qvbrQuality     = 7

	audioBitrate    = 96_000
	audioSampleRate = 48_000

	segmentLength = 10

	audioSelectorName = "Audio Selector 1"
)

// BuildCreateJobInput maps a JobRequest onto the CreateJob API shape.
func BuildCreateJobInput(req entities.JobRequest) *mediaconvert.CreateJobInput {
	in := &mediaconvert.CreateJobInput{
		Role:         aws.String(req.Role),
		JobTemplate:  aws.String(req.JobTemplate),
		Settings:     jobSettings(req.InputURI, req.Destination),
		UserMetadata: req.Metadata,
	}
	if req.Queue != "" {
		in.Queue = aws.String(req.Queue)
	}
	if req.Token != "" {
		in.ClientRequestToken = aws.String(req.Token)
	}
	return in
}

func jobSettings(inputURI, destination string) *types.JobSettings {
	return &types.JobSettings{
		Inputs: []types.Input{
			{
				FileInput: aws.String(inputURI),
				AudioSelectors: map[string]types.AudioSelector{
					audioSelectorName: {DefaultSelection: types.AudioDefaultSelectionDefault},
				},
				TimecodeSource: types.InputTimecodeSourceZerobased,
			},
		},
		OutputGroups: []types.OutputGroup{
			{
				Name: aws.String(OutputGroupName),
				OutputGroupSettings: &types.OutputGroupSettings{
					Type: types.OutputGroupTypeHlsGroupSettings,
					HlsGroupSettings: &types.HlsGroupSettings{
						Destination:      aws.String(destination),
						SegmentLength:    aws.Int32(segmentLength),
						MinSegmentLength: aws.Int32(0),
					},
				},
				Outputs: []types.Output{hlsOutput()},
			},
		},
	}
}

func hlsOutput() types.Output {
	return types.Output{
		NameModifier: aws.String(NameModifier),
		ContainerSettings: &types.ContainerSettings{
			Container: types.ContainerTypeM3u8,
		},
		VideoDescription: &types.VideoDescription{
			Width:  aws.Int32(videoWidth),
			Height: aws.Int32(videoHeight),
			CodecSettings: &types.VideoCodecSettings{
				Codec: types.VideoCodecH264,
				H264Settings: &types.H264Settings{
					RateControlMode: types.H264RateControlModeQvbr,
					MaxBitrate:      aws.Int32(videoMaxBitrate),
					QvbrSettings: &types.H264QvbrSettings{
						QvbrQualityLevel: aws.Int32(qvbrQuality),
					},
				},
			},
		},
		AudioDescriptions: []types.AudioDescription{
			{
				AudioSourceName: aws.String(audioSelectorName),
				CodecSettings: &types.AudioCodecSettings{
					Codec: types.AudioCodecAac,
					AacSettings: &types.AacSettings{
						Bitrate:    aws.Int32(audioBitrate),
						CodingMode: types.AacCodingModeCodingMode20,
						SampleRate: aws.Int32(audioSampleRate),
					},
				},
			},
		},
	}
}
